/*
Package randx provides functions for generating cryptographically secure random values.

It is primarily used to generate avatar spawn positions, the fallback avatar choice
for users that join without one, and standard UUID message IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// SpawnMin is the lower bound (inclusive, percent) of the random spawn range.
	SpawnMin = 10

	// SpawnMax is the upper bound (inclusive, percent) of the random spawn range.
	SpawnMax = 90

	// AvatarCount is the number of built-in avatars (avatar1 .. avatarN).
	AvatarCount = 10

	// spawnSteps is the resolution of a random spawn coordinate (two decimal places).
	spawnSteps = (SpawnMax - SpawnMin) * 100
)

// SpawnPosition generates a uniformly random (x, y) coordinate pair within
// [SpawnMin, SpawnMax]² using crypto/rand. Coordinates are percentages with
// two decimal places of resolution.
func SpawnPosition() (float64, float64, error) {
	x, err := spawnCoordinate()
	if err != nil {
		return 0, 0, err
	}

	y, err := spawnCoordinate()
	if err != nil {
		return 0, 0, err
	}

	return x, y, nil
}

func spawnCoordinate() (float64, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(spawnSteps+1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random spawn coordinate: %v", err)
	}

	return SpawnMin + float64(num.Int64())/100, nil
}

// AvatarChoice picks one of the built-in avatar selectors ("avatar1" .. "avatar10")
// uniformly at random.
func AvatarChoice() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(AvatarCount))
	if err != nil {
		return "", fmt.Errorf("failed to generate random avatar choice: %v", err)
	}

	return fmt.Sprintf("avatar%d", num.Int64()+1), nil
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a standard UUID v4 string to serve as an opaque identifier
// for a live websocket connection.
func ConnectionID() string {
	return uuid.New().String()
}
