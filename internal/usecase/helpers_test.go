package usecase_test

import (
	"github.com/iho/creditbook/internal/adapter/repository/memory"
)

func newMemoryRepo() *memory.CollectionRepository {
	return memory.NewCollectionRepository()
}
