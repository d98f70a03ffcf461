package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/xuanban/xuanban/pkg/model"
)

func TestScoreSingle_SavedWorkerCriteria(t *testing.T) {
	repo := newStubWorkerRepo()
	workerID := uuid.New()
	criteria := model.NewPreferenceCriteria()
	criteria.Groups = []string{"ER"}
	criteria.MandatoryGroup = true
	repo.workers[workerID] = &model.Worker{
		BaseModel: model.BaseModel{ID: workerID},
		Name:      "测试员工",
		Code:      "W001",
		Status:    "active",
		Criteria:  criteria,
	}

	h := NewScoreHandler(nil, "us", 4, repo)
	// 班组 ICU 与保存的强制班组 ER 零交集
	rec := postJSON(t, h.ScoreSingle, SingleScoreRequest{
		Line:     mondayLineInput(),
		WorkerID: workerID.String(),
		Catalog:  []ShiftCodeInput{{Code: "07AJ", BeginTime: "07:00", EndTime: "15:30"}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SingleScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if !resp.Result.Excluded {
		t.Error("Expected line excluded by saved mandatory group criteria")
	}
	if resp.Result.Score != 0 {
		t.Errorf("Expected score 0 for excluded line, got %v", resp.Result.Score)
	}
}

func TestScoreSingle_WorkerWithoutCriteria(t *testing.T) {
	repo := newStubWorkerRepo()
	workerID := uuid.New()
	repo.workers[workerID] = &model.Worker{
		BaseModel: model.BaseModel{ID: workerID},
		Name:      "测试员工",
		Code:      "W002",
		Status:    "active",
	}

	h := NewScoreHandler(nil, "us", 4, repo)
	rec := postJSON(t, h.ScoreSingle, SingleScoreRequest{
		Line:     mondayLineInput(),
		WorkerID: workerID.String(),
		Catalog:  []ShiftCodeInput{{Code: "07AJ", BeginTime: "07:00", EndTime: "15:30"}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SingleScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	// 未保存偏好时退回默认准则：空偏好集得满分
	if resp.Result.Score != 100 {
		t.Errorf("Expected neutral score 100, got %v", resp.Result.Score)
	}
}

func TestScoreSingle_UnknownWorker(t *testing.T) {
	h := NewScoreHandler(nil, "us", 4, newStubWorkerRepo())
	rec := postJSON(t, h.ScoreSingle, SingleScoreRequest{
		Line:     mondayLineInput(),
		WorkerID: uuid.New().String(),
	})

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown worker, got %d", rec.Code)
	}
}

func TestScoreSingle_InvalidWorkerID(t *testing.T) {
	h := NewScoreHandler(nil, "us", 4, newStubWorkerRepo())
	rec := postJSON(t, h.ScoreSingle, SingleScoreRequest{
		Line:     mondayLineInput(),
		WorkerID: "not-a-uuid",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed worker id, got %d", rec.Code)
	}
}
