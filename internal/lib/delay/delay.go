// Package delay имитирует сетевую задержку заглушечных вызовов.
//
// Ожидание прерывается отменой контекста, поэтому вызывающий код не меняется,
// когда заглушка будет заменена настоящим запросом с таймаутом.
package delay

import (
	"context"
	"time"
)

// Wait ждёт d или отмены ctx. Неположительная задержка возвращается сразу,
// если контекст ещё не отменён.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
