package models

import (
	"testing"
	"time"
)

func TestTask_IsAvailable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "Active unlimited", task: Task{Status: TaskStatusActive}, want: true},
		{name: "Paused", task: Task{Status: TaskStatusPaused}, want: false},
		{name: "Full", task: Task{Status: TaskStatusActive, MaxCompletions: 2, CompletedCount: 2}, want: false},
		{name: "Slots left", task: Task{Status: TaskStatusActive, MaxCompletions: 2, CompletedCount: 1}, want: true},
		{name: "Expired", task: Task{Status: TaskStatusActive, ExpiresAt: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsAvailable(now); got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTask_Slots(t *testing.T) {
	task := Task{Status: TaskStatusActive, IsCreatorTask: true, Reward: 10, MaxCompletions: 2, Budget: 20}

	task.TakeSlot()
	if task.Status != TaskStatusActive || task.CompletedCount != 1 {
		t.Fatalf("after one slot: status=%s count=%d", task.Status, task.CompletedCount)
	}
	if got := task.UnreservedBudget(); got != 10 {
		t.Errorf("UnreservedBudget() = %d, want 10", got)
	}

	task.TakeSlot()
	if task.Status != TaskStatusCompleted {
		t.Errorf("Status = %s, want %s", task.Status, TaskStatusCompleted)
	}
	if got := task.UnreservedBudget(); got != 0 {
		t.Errorf("UnreservedBudget() = %d, want 0", got)
	}

	task.ReleaseSlot()
	if task.Status != TaskStatusActive || task.CompletedCount != 1 {
		t.Errorf("after release: status=%s count=%d", task.Status, task.CompletedCount)
	}
}

func TestTask_UnreservedBudget_AdminTask(t *testing.T) {
	task := Task{Reward: 10, Budget: 100}
	if got := task.UnreservedBudget(); got != 0 {
		t.Errorf("UnreservedBudget() = %d, want 0 for admin tasks", got)
	}
}
