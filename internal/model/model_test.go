package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestQuizValidate(t *testing.T) {
	limit := func(n int) *int { return &n }

	tests := []struct {
		name    string
		quiz    Quiz
		wantErr bool
	}{
		{"valid untimed", Quiz{Difficulty: DifficultyEasy}, false},
		{"valid timed", Quiz{Difficulty: DifficultyHard, TimeLimitMinutes: limit(10)}, false},
		{"unknown difficulty", Quiz{Difficulty: "extreme"}, true},
		{"empty difficulty", Quiz{}, true},
		{"zero minute limit", Quiz{Difficulty: DifficultyMedium, TimeLimitMinutes: limit(0)}, true},
		{"negative limit", Quiz{Difficulty: DifficultyMedium, TimeLimitMinutes: limit(-5)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quiz.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuizTimed(t *testing.T) {
	ten := 10
	if (&Quiz{}).Timed() {
		t.Error("quiz without a limit should not be timed")
	}
	if !(&Quiz{TimeLimitMinutes: &ten}).Timed() {
		t.Error("quiz with a positive limit should be timed")
	}
}

func TestQuestionOptionList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"four options", `["a","b","c","d"]`, false},
		{"three options", `["a","b","c"]`, true},
		{"five options", `["a","b","c","d","e"]`, true},
		{"object instead of array", `{"a":1}`, true},
		{"string instead of array", `"abcd"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{ID: uuid.New(), Options: datatypes.JSON(tt.raw)}
			opts, err := q.OptionList()
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Errorf("OptionList() error = %v, want ErrMalformedRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OptionList() unexpected error: %v", err)
			}
			if len(opts) != OptionCount {
				t.Errorf("OptionList() returned %d options, want %d", len(opts), OptionCount)
			}
		})
	}
}

func TestQuestionValidate(t *testing.T) {
	valid := func() Question {
		q := Question{ID: uuid.New(), Prompt: "What is 2+2?"}
		if err := q.SetOptionList([]string{"3", "4", "5", "6"}); err != nil {
			t.Fatal(err)
		}
		q.CorrectIndex = 1
		return q
	}

	q := valid()
	if err := q.Validate(); err != nil {
		t.Errorf("valid question failed validation: %v", err)
	}

	q = valid()
	q.CorrectIndex = 4
	if err := q.Validate(); err == nil {
		t.Error("correct index out of range should fail validation")
	}

	q = valid()
	q.CorrectIndex = -1
	if err := q.Validate(); err == nil {
		t.Error("negative correct index should fail validation")
	}

	q = valid()
	q.Prompt = ""
	if err := q.Validate(); err == nil {
		t.Error("empty prompt should fail validation")
	}
}

func TestAttemptAnswerMapRoundTrip(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	var a QuizAttempt
	if err := a.SetAnswerMap(map[uuid.UUID]int{q1: 0, q2: 3}); err != nil {
		t.Fatal(err)
	}
	decoded, err := a.AnswerMap()
	if err != nil {
		t.Fatalf("AnswerMap() error: %v", err)
	}
	if decoded[q1] != 0 || decoded[q2] != 3 {
		t.Errorf("AnswerMap() = %v, want {%s:0 %s:3}", decoded, q1, q2)
	}
}

func TestAttemptAnswerMapMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"array instead of object", `[1,2,3]`},
		{"non-uuid key", `{"not-a-uuid": 1}`},
		{"string value", `{"5a9e6dcd-94d0-4c79-a718-5e0a4f0c1e8a": "two"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := QuizAttempt{ID: uuid.New(), Answers: datatypes.JSON(tt.raw)}
			if _, err := a.AnswerMap(); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("AnswerMap() error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}
