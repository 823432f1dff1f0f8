package goroutine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Group запускает фоновые задачи с восстановлением после panic
// и позволяет дождаться их завершения при остановке сервера.
type Group struct {
	log *logrus.Logger
	wg  sync.WaitGroup
}

// NewGroup создает группу, которая пишет panic в переданный логгер.
func NewGroup(log *logrus.Logger) *Group {
	return &Group{log: log}
}

// SafeGo запускает горутину с обработкой panic
func (g *Group) SafeGo(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.recover()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (g *Group) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.recover()
		fn(ctx)
	}()
}

// Wait блокируется до завершения всех запущенных задач либо отмены ctx.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Group) recover() {
	if r := recover(); r != nil {
		g.log.WithFields(logrus.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("panic в фоновой задаче")
	}
}
