package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validInput() FenceInput {
	return FenceInput{
		Latitude:    28.4595,
		Longitude:   77.0266,
		Radius:      500,
		Description: "Cyber Hub perimeter",
	}
}

func TestFenceInput_Validate_OK(t *testing.T) {
	in := validInput()
	if err := in.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFenceInput_Validate_AccumulatesAllViolations(t *testing.T) {
	in := FenceInput{
		Latitude:    95,
		Longitude:   77.0266,
		Radius:      0,
		Description: strings.Repeat("x", 501),
	}

	err := in.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	fields := map[string]bool{}
	for _, fv := range verr.Violations {
		fields[fv.Field] = true
	}
	for _, want := range []string{"latitude", "radius", "description"} {
		if !fields[want] {
			t.Errorf("missing violation for %q, got %v", want, verr.Violations)
		}
	}
	if len(verr.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(verr.Violations), verr.Violations)
	}
}

func TestFenceInput_Validate_RadiusBounds(t *testing.T) {
	cases := []struct {
		radius float64
		ok     bool
	}{
		{0, false},
		{0.5, false},
		{1, true},
		{10000, true},
		{10001, false},
	}
	for _, tc := range cases {
		in := validInput()
		in.Radius = tc.radius
		err := in.Validate()
		if tc.ok && err != nil {
			t.Errorf("radius %v: unexpected error %v", tc.radius, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("radius %v: expected validation error", tc.radius)
		}
	}
}

func TestFenceInput_Validate_Enums(t *testing.T) {
	in := validInput()
	in.Status = "archived"
	in.FenceType = "polygon"
	in.Priority = "urgent"
	in.AlertTypes = []AlertType{"entry", "teleport"}
	in.NotificationMethods = []NotificationMethod{"fax"}

	err := in.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Violations) != 5 {
		t.Errorf("expected 5 violations, got %d: %v", len(verr.Violations), verr.Violations)
	}
}

func TestFenceUpdate_Validate_OnlySuppliedFields(t *testing.T) {
	bad := 95.0
	u := FenceUpdate{Latitude: &bad}
	if err := u.Validate(); err == nil {
		t.Error("expected latitude violation")
	}

	// An update that doesn't touch geometry never reports geometry errors.
	desc := "new description"
	u = FenceUpdate{Description: &desc}
	if err := u.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFenceUpdate_Apply_ReportsCenterChange(t *testing.T) {
	f := GeoFence{Latitude: 28.4595, Longitude: 77.0266, Radius: 500, Description: "d"}

	r := 750.0
	if changed := (&FenceUpdate{Radius: &r}).Apply(&f); changed {
		t.Error("radius-only update must not report a center change")
	}
	if f.Radius != 750 || f.Latitude != 28.4595 || f.Description != "d" {
		t.Errorf("unexpected merge result: %+v", f)
	}

	lat := 28.5
	if changed := (&FenceUpdate{Latitude: &lat}).Apply(&f); !changed {
		t.Error("latitude update must report a center change")
	}
}

func TestComputeDerived(t *testing.T) {
	f := GeoFence{Latitude: 28.4595, Longitude: 77.0266, Radius: 500}
	f.ComputeDerived()

	if want := math.Pi * 500 * 500; f.Area != want {
		t.Errorf("area = %f, want %f", f.Area, want)
	}
	if f.LocationString != "28.459500, 77.026600" {
		t.Errorf("locationString = %q", f.LocationString)
	}
}

func TestDeriveDescription(t *testing.T) {
	got := DeriveDescription(28.4595, 77.0266)
	if got != "Fenced area at 28.459500, 77.026600" {
		t.Errorf("unexpected derived description: %q", got)
	}
}
