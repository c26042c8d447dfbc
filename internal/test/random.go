package test

import (
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
)

var (
	Source = rand.NewSource(time.Now().UnixNano())
	Faker  = faker.NewWithSeed(Source)
)
