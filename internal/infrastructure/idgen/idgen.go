package idgen

import (
	"crypto/rand"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/oklog/ulid"
)

// NewULID returns a lexicographically sortable id.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

var shortID = mustNanoID(15)

func mustNanoID(length int) func() string {
	gen, err := nanoid.Standard(length)
	if err != nil {
		panic(err)
	}
	return gen
}

// NewShortID returns a 15 character url-safe id.
func NewShortID() string {
	return shortID()
}
