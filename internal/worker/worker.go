// Package worker содержит фоновые потребители событий и их общий жизненный цикл.
package worker

import (
	"context"
)

// Worker - фоновый потребитель событий
type Worker interface {
	// Name - имя для логов
	Name() string

	// Run обрабатывает события, пока не отменен ctx или не вызван Stop
	Run(ctx context.Context) error

	// Stop просит воркер завершиться; повторный вызов ничего не делает
	Stop()
}

// Stats - счетчики обработанных событий
type Stats struct {
	Handled int64
	Dropped int64
}

// Reporter - воркер, ведущий счетчики
type Reporter interface {
	Stats() Stats
}
