//go:build integration

package testutils

import (
	"strings"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator builds participants and die types from a seeded faker so
// a failing run can be reproduced.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

func NewTestDataGenerator(seed uint64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// Participant returns an active participant of the given role.
func (g *TestDataGenerator) Participant(role participantdomain.Role) participantdomain.Participant {
	name := g.faker.FirstName()
	return participantdomain.Participant{
		ID:     participantdomain.ID(strings.ToLower(name) + "-" + g.faker.DigitN(4)),
		Name:   name,
		Role:   role,
		Active: true,
	}
}

// DieType returns an enabled die type with the given limit.
func (g *TestDataGenerator) DieType(maxPerUser int) dicetypedomain.DieType {
	d := dicetypedomain.New()
	d.Name = g.faker.Adjective() + " " + g.faker.Noun()
	d.MaxPerUser = maxPerUser
	d.SortPriority = g.faker.IntRange(0, 10)
	return d
}
