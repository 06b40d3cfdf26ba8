package brute

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"neoftp/internal/core/lib/network/qos"
	"neoftp/internal/core/model"
	"neoftp/internal/core/reporter"
	"neoftp/internal/pkg/logger"
	"neoftp/internal/pkg/utils"
)

// BruteResults 结果集合，用于实现 TabularData 接口以便一次性打印所有结果
type BruteResults []model.BruteResult

// Headers 实现 TabularData 接口
func (rs BruteResults) Headers() []string {
	return model.BruteResult{}.Headers()
}

// Rows 实现 TabularData 接口
func (rs BruteResults) Rows() [][]string {
	var rows [][]string
	for _, r := range rs {
		rows = append(rows, r.Rows()...)
	}
	return rows
}

// BruteScanner 凭据验证扫描器
// 每个目标主机一个会话，主机之间并发，同一主机内凭据串行
type BruteScanner struct {
	limiter   *qos.AdaptiveLimiter
	dict      *DictManager
	factories map[string]SessionFactory
	redact    reporter.Redactor
	mu        sync.RWMutex
}

// NewBruteScanner 创建扫描器，limiter 为 nil 时使用默认并发 (20, 4, 100)
func NewBruteScanner(limiter *qos.AdaptiveLimiter) *BruteScanner {
	if limiter == nil {
		limiter = qos.NewAdaptiveLimiter(20, 4, 100)
	}
	return &BruteScanner{
		limiter:   limiter,
		dict:      NewDictManager(),
		factories: make(map[string]SessionFactory),
		redact:    reporter.PlainRedactor,
	}
}

// SetRedactor 结果表中的口令按 r 脱敏
func (s *BruteScanner) SetRedactor(r reporter.Redactor) {
	if r != nil {
		s.redact = r
	}
}

// RegisterFactory 注册协议会话工厂
func (s *BruteScanner) RegisterFactory(f SessionFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[f.Name()] = f
}

// Name 扫描器名称
func (s *BruteScanner) Name() model.TaskType {
	return model.TaskTypeBrute
}

// Run 执行扫描任务
// Task.Params:
//   - "service": 协议名，默认 ftp
//   - "users" / "passwords" / "no_bruteforce": 见 DictManager.Generate
func (s *BruteScanner) Run(ctx context.Context, task *model.Task) ([]*model.TaskResult, error) {
	startTime := time.Now()

	serviceName, _ := task.Params["service"].(string)
	if serviceName == "" {
		serviceName = "ftp"
	}

	s.mu.RLock()
	factory, exists := s.factories[serviceName]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported service: %s", serviceName)
	}

	ports, err := utils.ParsePortList(task.PortRange)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("invalid port: %q", task.PortRange)
	}

	authList := s.dict.Generate(task.Params)

	var (
		results []model.BruteResult
		resMu   sync.Mutex
		wg      sync.WaitGroup
	)

	for _, host := range task.Targets {
		for _, port := range ports {
			if err := s.limiter.Acquire(ctx); err != nil {
				wg.Wait()
				return s.finish(task, startTime, results, model.TaskStatusCancelled, err), err
			}

			target := model.Target{Host: host, Port: port}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer s.limiter.Release()

				found := s.probeHost(ctx, task.ID, factory, target, authList)
				if len(found) > 0 {
					resMu.Lock()
					results = append(results, found...)
					resMu.Unlock()
				}
			}()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return s.finish(task, startTime, results, model.TaskStatusCancelled, err), err
	}
	return s.finish(task, startTime, results, model.TaskStatusSuccess, nil), nil
}

// probeHost 单主机流程: connect -> fingerprint -> 逐个凭据 authenticate
func (s *BruteScanner) probeHost(ctx context.Context, taskID string, factory SessionFactory, target model.Target, authList []Auth) []model.BruteResult {
	start := time.Now()
	sess := factory.NewSession(target)
	defer sess.Close()

	if err := sess.Connect(ctx); err != nil {
		s.limiter.OnFailure()
		logger.LogScanOperation(taskID, factory.Name(), target.Addr(), "failed", err.Error(), time.Since(start), nil)
		return nil
	}
	s.limiter.OnSuccess()

	banner, _ := sess.Fingerprint(ctx)

	var found []model.BruteResult
	attempts := 0
	for _, auth := range authList {
		if ctx.Err() != nil {
			break
		}
		attempts++
		res, err := sess.Authenticate(ctx, auth)
		if err != nil {
			// 重连失败，该主机结束
			logger.ForTarget(factory.Name(), target.Host, target.Port).Debugf("reconnect failed: %v", err)
			break
		}
		if res.Succeeded() {
			found = append(found, model.BruteResult{
				Service:   factory.Name(),
				Host:      target.Host,
				Port:      target.Port,
				Username:  auth.Username,
				Password:  s.redact(auth.Password),
				Banner:    banner,
				Anonymous: res.Anonymous,
				Success:   true,
			})
		}
		if !res.Continue {
			break
		}
	}

	logger.LogScanOperation(taskID, factory.Name(), target.Addr(), "completed",
		strconv.Itoa(len(found))+" credential(s) found", time.Since(start),
		map[string]interface{}{"attempts": attempts, "banner": banner})
	return found
}

func (s *BruteScanner) finish(task *model.Task, start time.Time, results []model.BruteResult, status model.TaskStatus, err error) []*model.TaskResult {
	tr := &model.TaskResult{
		TaskID:      task.ID,
		Status:      status,
		ExecutedAt:  start,
		CompletedAt: time.Now(),
		Result:      BruteResults(results),
	}
	if err != nil {
		tr.Error = err.Error()
	}
	return []*model.TaskResult{tr}
}
