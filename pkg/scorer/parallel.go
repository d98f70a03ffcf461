// Package scorer 提供班表与员工加权偏好的匹配评分
package scorer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xuanban/xuanban/pkg/logger"
	"github.com/xuanban/xuanban/pkg/model"
)

// BatchResult 批量评分的单项结果
// 单条班表失败不影响其余结果，失败原因单独上报
type BatchResult struct {
	Index  int          `json:"index"`
	Result *MatchResult `json:"result,omitempty"`
	Err    error        `json:"-"`
	ErrMsg string       `json:"error,omitempty"`
}

// ParallelScorer 并行批量评分器
// 每个班表独立评分，无共享写状态，结果由调用方合并
type ParallelScorer struct {
	workers int
	scorer  *Scorer
	log     *logger.EngineLogger
}

// NewParallelScorer 创建并行批量评分器
func NewParallelScorer(workers int) *ParallelScorer {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelScorer{
		workers: workers,
		scorer:  NewScorer(),
		log:     logger.NewEngineLogger(),
	}
}

// ScoreBatch 并行评分一批班表
// 返回与输入等长的按序结果；完成顺序无要求，结果按 Index 归位
func (p *ParallelScorer) ScoreBatch(ctx context.Context, lines []*model.BidLine, catalog model.ShiftCatalog, criteria *model.PreferenceCriteria, holidays map[string]bool) []BatchResult {
	if len(lines) == 0 {
		return nil
	}

	start := time.Now()
	p.log.StartBatch(len(lines), p.workers)

	jobChan := make(chan int, len(lines))
	resultChan := make(chan BatchResult, len(lines))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result, err := p.scorer.Score(lines[idx], catalog, criteria, holidays)
				br := BatchResult{Index: idx, Result: result, Err: err}
				if err != nil {
					br.ErrMsg = err.Error()
				}
				resultChan <- br
			}
		}()
	}

	for i := range lines {
		jobChan <- i
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]BatchResult, len(lines))
	for i := range results {
		results[i] = BatchResult{Index: i, ErrMsg: "评分未完成"}
	}
	failed := 0
	for br := range resultChan {
		results[br.Index] = br
		if br.Err != nil {
			failed++
		}
	}

	p.log.BatchComplete(len(lines), failed, time.Since(start))
	return results
}

// FilterPositive 过滤并排序批量结果：
// 丢弃失败项和非正分项（硬性筛选落选），按得分降序稳定排序
func FilterPositive(results []BatchResult) []*MatchResult {
	var kept []*MatchResult
	for _, br := range results {
		if br.Err != nil || br.Result == nil {
			continue
		}
		if br.Result.Score <= 0 {
			continue
		}
		kept = append(kept, br.Result)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

// Failures 收集批量评分中的失败项
func Failures(results []BatchResult) []BatchResult {
	var failed []BatchResult
	for _, br := range results {
		if br.Err != nil {
			failed = append(failed, br)
		}
	}
	return failed
}
