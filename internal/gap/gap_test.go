package gap

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestType_JSON(t *testing.T) {
	data, err := json.Marshal([]SkillGap{{Skill: "Docker", Type: ProficiencyLow}})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	r, err := ReadReport(data)
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}
	if len(r.Gaps) != 1 || r.Gaps[0].Type != ProficiencyLow {
		t.Errorf("ReadReport() = %+v", r.Gaps)
	}
}

func TestReadReport(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantRole string
		wantUser string
		wantGaps int
		wantErr  error
	}{
		{
			name:     "gaps command output",
			data:     `{"user_id":"u1","role":"Data Scientist","min_proficiency":"INTERMEDIATE","gaps":[{"skill":"Pandas","gap_type":"MISSING"},{"skill":"Python","gap_type":"PROFICIENCY_LOW"}],"current_skills":[]}`,
			wantRole: "Data Scientist",
			wantUser: "u1",
			wantGaps: 2,
		},
		{
			name:     "bare array",
			data:     "\n  [{\"skill\":\"SQL\",\"gap_type\":\"MISSING\"}]\n",
			wantGaps: 1,
		},
		{
			name:    "blank skill",
			data:    `[{"skill":" ","gap_type":"MISSING"}]`,
			wantErr: ErrEmptySkill,
		},
		{
			name:    "unknown gap type",
			data:    `[{"skill":"SQL","gap_type":"missing"}]`,
			wantErr: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ReadReport([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadReport() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadReport() error = %v", err)
			}
			if r.Role != tt.wantRole || r.UserID != tt.wantUser || len(r.Gaps) != tt.wantGaps {
				t.Errorf("ReadReport() = %+v", r)
			}
		})
	}

	if _, err := ReadReport([]byte("not json")); err == nil {
		t.Error("ReadReport(not json) should return error")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"MISSING", Missing, false},
		{"PROFICIENCY_LOW", ProficiencyLow, false},
		{"missing", Missing, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v", tt.input, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidType) {
				t.Errorf("error = %v, want ErrInvalidType", err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
