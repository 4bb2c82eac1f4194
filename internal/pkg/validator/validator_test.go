package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	for _, s := range []string{"09:00", "17:10:30", "00:00"} {
		if !IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"9am", "24:00", "", "12:61"} {
		if IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	_, ok := IsValidDateTime("2024-01-15T10:30:00+07:00")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2024-01-15 10:30")
	assert.False(t, ok)
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("reason", "reason is required")
	errs.Add("end_date", "end_date must not be before start_date")

	assert.Error(t, errs.Err())
	assert.Equal(t, "reason: reason is required; end_date: end_date must not be before start_date", errs.Error())
	assert.Equal(t, map[string]string{
		"reason":   "reason is required",
		"end_date": "end_date must not be before start_date",
	}, errs.ToMap())
}

type sample struct {
	Reason string `json:"reason" validate:"required,max=10"`
	Kind   string `json:"kind" validate:"omitempty,oneof=annual sick"`
	Hidden string `json:"-"`
}

func TestStruct(t *testing.T) {
	assert.Empty(t, Struct(sample{Reason: "ok", Kind: "sick"}))

	errs := Struct(sample{Kind: "holiday"})
	m := errs.ToMap()
	assert.Equal(t, "reason is required", m["reason"])
	assert.Equal(t, "kind must be one of: annual, sick", m["kind"])

	errs = Struct(sample{Reason: "this is far too long"})
	assert.Equal(t, "reason must not exceed 10 characters", errs.ToMap()["reason"])
}
