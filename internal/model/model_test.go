package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ResourceID
	}{
		{"integer", `{"id": 42}`, "42"},
		{"string", `{"id": "7"}`, "7"},
		{"null", `{"id": null}`, ""},
		{"missing", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Resource
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r.ID)
		})
	}
}

func TestResourceID_Empty(t *testing.T) {
	assert.True(t, ResourceID("").Empty())
	assert.True(t, ResourceID("  ").Empty())
	assert.True(t, ResourceID("null").Empty())
	assert.True(t, ResourceID("undefined").Empty())
	assert.False(t, ResourceID("0").Empty())
}

func TestResource_Labels(t *testing.T) {
	r := Resource{Grade: "Form 2"}
	assert.Equal(t, "Form 2", r.GradeLabel())
	assert.Equal(t, "No description available", r.DescriptionText())

	r.ClassGrade = "form3"
	assert.Equal(t, "form3", r.GradeLabel())
	assert.Equal(t, "N/A", Resource{}.GradeLabel())
}

func TestAmount_JSON(t *testing.T) {
	a := MustAmount("100")
	b, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{a})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 100}`, string(b))
	assert.Equal(t, "Ksh 100", a.Tag("Ksh"))

	_, err = NewAmount("0")
	assert.Error(t, err)
	_, err = NewAmount("abc")
	assert.Error(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	sign := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		})
		s, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}

	assert.False(t, Session{Username: "jane"}.Expired(now), "no token")
	assert.False(t, Session{Token: "opaque-flag"}.Expired(now), "non jwt token")
	assert.False(t, Session{Token: sign(now.Add(time.Hour))}.Expired(now))
	assert.True(t, Session{Token: sign(now.Add(-time.Hour))}.Expired(now))
}

func TestCurriculum(t *testing.T) {
	assert.Equal(t, FamilyStandard, ClassFamily("std7"))
	assert.Equal(t, FamilyForm, ClassFamily("Form2"))
	assert.Equal(t, FamilyPrePrimary, ClassFamily("pp1"))
	assert.Equal(t, FamilyGrade, ClassFamily("grade6"))
	assert.Equal(t, "", ClassFamily("college"))

	assert.Contains(t, SubjectsFor("form4"), "Computer Studies")
	assert.Contains(t, SubjectsFor("grade6"), "Science and Technology")
	assert.Nil(t, SubjectsFor("college"))

	assert.Equal(t, "science-and-technology", SubjectSlug("Science and Technology"))
	assert.Equal(t, "pre-technical-and-pre-career-education", SubjectSlug(" Pre-Technical and  Pre-Career Education "))
}

func TestCachedResource_RoundTrip(t *testing.T) {
	cover := "static/covers/a.jpg"
	r := Resource{ID: "3", ResourceType: ResourceTypePaper, Grade: "Form 4", Title: "KCSE English", Cover: &cover}
	c := CachedFromResource(r, 1)
	assert.Equal(t, "Form 4", c.ClassGrade)

	back := c.ToResource()
	assert.Equal(t, r.ID, back.ID)
	assert.Equal(t, "static/covers/a.jpg", back.CoverPath())

	noCover := CachedFromResource(Resource{ID: "4", Title: "x"}, 2).ToResource()
	assert.Nil(t, noCover.Cover)
}
