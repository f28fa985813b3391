package utils

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerPool 通用协程池，一个进程可以持有多个实例
type WorkerPool struct {
	jobQueue  chan func()
	workerNum int
	logger    *zap.Logger

	wg sync.WaitGroup
	// mu 保护 stopped；Submit 持读锁发送，Stop 持写锁关闭队列
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewWorkerPool 创建一个新的协程池，需要调用 Start 启动
func NewWorkerPool(workerNum, queueSize int, logger *zap.Logger) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		jobQueue:  make(chan func(), max(queueSize, 0)),
		workerNum: workerNum,
		logger:    logger,
	}
}

// Start 启动协程池
func (p *WorkerPool) Start() {
	for i := range p.workerNum {
		p.wg.Go(func() {
			for job := range p.jobQueue {
				p.run(i, job)
			}
		})
	}
	p.logger.Info("worker pool started", zap.Int("workers", p.workerNum))
}

// run 使用 recover 防止单个任务 panic 导致 worker 退出
func (p *WorkerPool) run(workerID int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()
	job()
}

// Submit 提交任务到协程池
// 队列已满时阻塞排队，直到有空位、ctx 结束或协程池停止
func (p *WorkerPool) Submit(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop 拒绝新任务，已入队的任务全部执行完后返回
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobQueue)
		p.mu.Unlock()
	})
	p.wg.Wait()

	// 未调用 Start 时由调用方执行剩余任务
	for job := range p.jobQueue {
		p.run(-1, job)
	}
}

func (p *WorkerPool) Size() int {
	return p.workerNum
}
