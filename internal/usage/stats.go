package usage

import (
	"time"

	"vertexchat-go/internal/conversation"
)

// Stats aggregates exchanges and token consumption across sessions.
type Stats struct {
	TotalExchanges int64 `json:"total_exchanges"`
	Committed      int64 `json:"committed"`
	Rejected       int64 `json:"rejected"`
	Aborted        int64 `json:"aborted"`
	PromptTokens   int64 `json:"prompt_tokens"`
	OutputTokens   int64 `json:"output_tokens"`
	TotalTokens    int64 `json:"total_tokens"`

	DailyStats  map[string]*DailyStats `json:"daily_stats"`  // key: "2025-01-06"
	HourlyStats map[int]*HourlyStats   `json:"hourly_stats"` // key: 0-23, all days
	Models      map[string]*ModelStats `json:"models"`
}

// ModelStats tracks usage for a specific model
type ModelStats struct {
	ModelName    string    `json:"model_name"`
	Calls        int64     `json:"calls"`
	PromptTokens int64     `json:"prompt_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	TotalTokens  int64     `json:"total_tokens"`
	LastUsed     time.Time `json:"last_used"`
}

// DailyStats tracks statistics for a specific day
type DailyStats struct {
	Date      string `json:"date"`
	Exchanges int64  `json:"exchanges"`
	Tokens    int64  `json:"tokens"`
	Rejected  int64  `json:"rejected"`
	Aborted   int64  `json:"aborted"`
}

// HourlyStats tracks statistics for a specific hour (0-23)
type HourlyStats struct {
	Hour      int   `json:"hour"`
	Exchanges int64 `json:"exchanges"`
	Tokens    int64 `json:"tokens"`
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{
		DailyStats:  make(map[string]*DailyStats),
		HourlyStats: make(map[int]*HourlyStats),
		Models:      make(map[string]*ModelStats),
	}
}

// ensureMaps fills maps left nil by decoding.
func (s *Stats) ensureMaps() {
	if s.DailyStats == nil {
		s.DailyStats = make(map[string]*DailyStats)
	}
	if s.HourlyStats == nil {
		s.HourlyStats = make(map[int]*HourlyStats)
	}
	if s.Models == nil {
		s.Models = make(map[string]*ModelStats)
	}
}

// add folds one exchange into the aggregate. Timestamps are bucketed in UTC.
func (s *Stats) add(ev conversation.ExchangeEvent) {
	s.TotalExchanges++
	switch ev.Outcome {
	case conversation.OutcomeCommitted:
		s.Committed++
	case conversation.OutcomeRejected:
		s.Rejected++
	case conversation.OutcomeAborted:
		s.Aborted++
	}
	total := int64(ev.TotalTokens)
	if total == 0 {
		total = int64(ev.PromptTokens + ev.OutputTokens)
	}
	s.PromptTokens += int64(ev.PromptTokens)
	s.OutputTokens += int64(ev.OutputTokens)
	s.TotalTokens += total

	at := ev.At.UTC()
	dateKey := at.Format("2006-01-02")
	daily, ok := s.DailyStats[dateKey]
	if !ok {
		daily = &DailyStats{Date: dateKey}
		s.DailyStats[dateKey] = daily
	}
	daily.Exchanges++
	daily.Tokens += total
	switch ev.Outcome {
	case conversation.OutcomeRejected:
		daily.Rejected++
	case conversation.OutcomeAborted:
		daily.Aborted++
	}

	hourly, ok := s.HourlyStats[at.Hour()]
	if !ok {
		hourly = &HourlyStats{Hour: at.Hour()}
		s.HourlyStats[at.Hour()] = hourly
	}
	hourly.Exchanges++
	hourly.Tokens += total

	if ev.Model != "" {
		model, ok := s.Models[ev.Model]
		if !ok {
			model = &ModelStats{ModelName: ev.Model}
			s.Models[ev.Model] = model
		}
		model.Calls++
		model.PromptTokens += int64(ev.PromptTokens)
		model.OutputTokens += int64(ev.OutputTokens)
		model.TotalTokens += total
		if ev.At.After(model.LastUsed) {
			model.LastUsed = ev.At
		}
	}
}

// clone returns a deep copy.
func (s *Stats) clone() *Stats {
	out := *s
	out.DailyStats = make(map[string]*DailyStats, len(s.DailyStats))
	for k, v := range s.DailyStats {
		c := *v
		out.DailyStats[k] = &c
	}
	out.HourlyStats = make(map[int]*HourlyStats, len(s.HourlyStats))
	for k, v := range s.HourlyStats {
		c := *v
		out.HourlyStats[k] = &c
	}
	out.Models = make(map[string]*ModelStats, len(s.Models))
	for k, v := range s.Models {
		c := *v
		out.Models[k] = &c
	}
	return &out
}
