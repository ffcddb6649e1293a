// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package validation

import (
	"strings"
	"testing"
)

type interactionPayload struct {
	EventID int64  `validate:"required,gt=0"`
	Type    string `validate:"required,oneof=view click save unsave share rate"`
	Rating  int    `validate:"min=0,max=5"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := interactionPayload{EventID: 1, Type: "save"}

	if verr := ValidateStruct(&payload); verr != nil {
		t.Errorf("ValidateStruct() = %v, want nil", verr)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	payload := interactionPayload{EventID: 1, Type: "bookmark"}

	verr := ValidateStruct(&payload)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(verr.Errors()) != 1 {
		t.Fatalf("Errors() count = %d, want 1", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "must be one of") {
		t.Errorf("Message = %q, want oneof translation", apiErr.Message)
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	payload := interactionPayload{Type: "", Rating: 9}

	verr := ValidateStruct(&payload)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("Errors() count = %d, want 3", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	details, ok := apiErr.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Details type = %T, want map", apiErr.Details)
	}
	if _, ok := details["fields"]; !ok {
		t.Error("Details missing fields list")
	}
}

func TestTranslateMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
		want    string
	}{
		{
			"required",
			&struct {
				Name string `validate:"required"`
			}{},
			"Name is required",
		},
		{
			"max numeric",
			&struct {
				Limit int `validate:"max=50"`
			}{Limit: 51},
			"Limit must be at most 50",
		},
		{
			"min string",
			&struct {
				City string `validate:"min=2"`
			}{City: "a"},
			"City must be at least 2 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.payload)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if got := verr.Errors()[0].Error(); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
