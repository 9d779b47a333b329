package modkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sql_basics", Normalize("SQL Basics"))
	assert.Equal(t, "sql_basics", Normalize("  sql   basics  "))
	assert.Equal(t, "sql_basics", Normalize("Sql\tBasics"))
}

func TestNormalize_EmptyFallsBackToDefaultTitle(t *testing.T) {
	assert.Equal(t, Normalize(DefaultTitle), Normalize(""))
	assert.Equal(t, Normalize(DefaultTitle), Normalize("   "))
}

func TestNormalize_CaseAndWhitespaceVariantsCollide(t *testing.T) {
	variants := []string{
		"System Design",
		"system design",
		"  SYSTEM   DESIGN ",
		"System\ndesign",
	}
	want := Normalize(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, Normalize(v), "variant %q", v)
	}
}

func TestNormalize_PercentEncodesUnsafeRunes(t *testing.T) {
	assert.Equal(t, "c%2B%2B_interview", Normalize("C++ Interview"))
	assert.Equal(t, "concurrency_%26_locks", Normalize("Concurrency & Locks"))
}
