// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import "testing"

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"unknown", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePersonalityLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetAndGetPersonality(t *testing.T) {
	original := GetPersonality()
	defer SetPersonality(original)

	p := Personality{
		Level:        PersonalityMinimal,
		NauticalMode: false,
	}
	SetPersonality(p)

	got := GetPersonality()
	if got.Level != PersonalityMinimal {
		t.Errorf("Level = %v, want %v", got.Level, PersonalityMinimal)
	}
	if got.NauticalMode {
		t.Error("NauticalMode = true, want false")
	}
}

func TestSetPersonalityLevel(t *testing.T) {
	original := GetPersonality()
	defer SetPersonality(original)

	SetPersonalityLevel(PersonalityMachine)

	got := GetPersonality()
	if got.Level != PersonalityMachine {
		t.Errorf("Level = %v, want %v", got.Level, PersonalityMachine)
	}
}

func TestShouldShowProgress(t *testing.T) {
	original := GetPersonality()
	defer SetPersonality(original)

	SetPersonalityLevel(PersonalityFull)
	if !ShouldShowProgress() {
		t.Error("expected progress indicators in full mode")
	}

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowProgress() {
		t.Error("expected no progress indicators in machine mode")
	}
}

func TestShouldShowColors(t *testing.T) {
	original := GetPersonality()
	defer SetPersonality(original)

	SetPersonalityLevel(PersonalityStandard)
	if !ShouldShowColors() {
		t.Error("expected colors in standard mode")
	}

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowColors() {
		t.Error("expected no colors in machine mode")
	}
}

func TestDefaultPersonality(t *testing.T) {
	p := DefaultPersonality()
	if p.Level != PersonalityFull {
		t.Errorf("default level = %v, want %v", p.Level, PersonalityFull)
	}
	if !p.NauticalMode {
		t.Error("default NauticalMode = false, want true")
	}
}
