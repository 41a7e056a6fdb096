package model

import "strings"

// Class families as used in class select values ("std7", "form2", "pp1", "grade6").
const (
	FamilyPrePrimary = "pp"
	FamilyGrade      = "grade"
	FamilyStandard   = "std"
	FamilyForm       = "form"
)

var Classes = []string{
	"pp1", "pp2",
	"grade1", "grade2", "grade3", "grade4", "grade5", "grade6", "grade7", "grade8", "grade9",
	"std4", "std5", "std6", "std7", "std8",
	"form1", "form2", "form3", "form4",
}

var familySubjects = map[string][]string{
	FamilyStandard: {
		"English", "Kiswahili", "Mathematics", "Science", "Social Studies", "Religious Education",
	},
	FamilyForm: {
		"English", "Kiswahili", "Mathematics", "Biology", "Chemistry", "Physics", "History",
		"Geography", "Religious Education", "Business Studies", "Agriculture", "Home Science",
		"Computer Studies",
	},
	FamilyPrePrimary: {
		"Language Activities", "Mathematical Activities", "Environmental Activities",
		"Creative Activities", "Religious Activities",
	},
	FamilyGrade: {
		"English", "Kiswahili", "Kenya Sign Language", "Mathematics", "Religious Education",
		"Environmental Activities", "Creative Activities", "Science and Technology",
		"Agriculture and Nutrition", "Social Studies", "Arts and Craft", "Music",
		"Physical and Health Education", "Integrated Science",
		"Pre-Technical and Pre-Career Education", "Business Studies", "Health Education",
		"Life Skills Education", "Computer Science", "Home Science", "Community Service Learning",
		"Physics", "Chemistry", "Biology", "Fine Art", "Performing Arts", "Sports Science",
		"History", "Geography", "Literature in English",
	},
}

// ClassFamily maps a class value to its family; "" when unknown.
func ClassFamily(class string) string {
	class = strings.ToLower(strings.TrimSpace(class))
	for _, family := range []string{FamilyStandard, FamilyForm, FamilyPrePrimary, FamilyGrade} {
		if strings.Contains(class, family) {
			return family
		}
	}
	return ""
}

// SubjectsFor lists the subjects offered for a class, nil when the class is unknown.
func SubjectsFor(class string) []string {
	subjects := familySubjects[ClassFamily(class)]
	if subjects == nil {
		return nil
	}
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

// SubjectSlug is the value the admin upload form sends for a subject.
func SubjectSlug(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(subject)), "-")
}
