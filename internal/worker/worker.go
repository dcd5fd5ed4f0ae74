package worker

import (
	"context"
)

// Worker - долгоживущий потребитель, управляемый WorkerManager
type Worker interface {
	// Start блокируется до Stop, отмены ctx или фатальной ошибки
	Start(ctx context.Context) error

	// Stop просит воркер завершиться после текущего задания
	Stop() error

	Name() string
}
