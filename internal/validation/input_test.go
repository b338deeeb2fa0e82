package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.NoError(t, Email("first.last+tag@sub.domain.io"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("user@"))
	assert.Error(t, Email(strings.Repeat("a", 250)+"@x.com"))
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("bob_the-builder"))
	assert.Error(t, Username("ab"))
	assert.Error(t, Username("has spaces"))
	assert.Error(t, Username(strings.Repeat("a", 33)))
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("s3curepass"))
	assert.Error(t, Password("short1"))
	assert.Error(t, Password("onlyletters"))
	assert.Error(t, Password("12345678"))
}

func TestPhone(t *testing.T) {
	// Optional: empty is fine.
	assert.NoError(t, Phone(""))
	assert.NoError(t, Phone("+14155551234"))
	assert.Error(t, Phone("call me"))
	assert.Error(t, Phone("123"))
}

func TestZipCode(t *testing.T) {
	assert.NoError(t, ZipCode("94105"))
	assert.NoError(t, ZipCode("94105-1234"))
	assert.Error(t, ZipCode("9410"))
	assert.Error(t, ZipCode("ABCDE"))
}

func TestJobTitle(t *testing.T) {
	assert.NoError(t, JobTitle("Fix leaking kitchen faucet"))
	assert.Error(t, JobTitle("   "))
	assert.Error(t, JobTitle(strings.Repeat("x", 201)))
}

func TestBudget(t *testing.T) {
	min, max := 50.0, 200.0
	assert.NoError(t, Budget(&min, &max))
	assert.NoError(t, Budget(nil, nil))
	assert.NoError(t, Budget(&min, nil))

	negative := -1.0
	assert.Error(t, Budget(&negative, nil))
	assert.Error(t, Budget(nil, &negative))

	inverted := 10.0
	assert.Error(t, Budget(&max, &inverted))
}

func TestProposalPrice(t *testing.T) {
	assert.NoError(t, ProposalPrice(120.50))
	assert.Error(t, ProposalPrice(0))
	assert.Error(t, ProposalPrice(-5))
	assert.Error(t, ProposalPrice(2_000_000))
}

func TestSkills(t *testing.T) {
	assert.NoError(t, Skills([]string{"plumbing", "drywall"}))
	assert.NoError(t, Skills(nil))
	assert.Error(t, Skills([]string{""}))
	assert.Error(t, Skills([]string{strings.Repeat("x", 65)}))

	tooMany := make([]string, 31)
	for i := range tooMany {
		tooMany[i] = "skill"
	}
	assert.Error(t, Skills(tooMany))
}

func TestRating(t *testing.T) {
	assert.NoError(t, Rating(1))
	assert.NoError(t, Rating(5))
	assert.Error(t, Rating(0))
	assert.Error(t, Rating(6))
}
