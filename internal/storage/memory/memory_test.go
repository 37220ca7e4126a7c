package memory

import (
	"testing"

	"wedplan/internal/storage/storagetest"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, New())
}
