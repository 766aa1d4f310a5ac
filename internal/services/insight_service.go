package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/ai"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// InsightFallback is shown whenever the model cannot be reached or returns nothing
const InsightFallback = "Không thể kết nối với trí tuệ nhân tạo lúc này. Vui lòng thử lại sau."

const insightInstructions = `

Hãy đóng vai một chuyên gia tư vấn tài chính.
1. Phân tích tình hình công nợ hiện tại (tổng nợ phải thu, tổng nợ phải trả).
2. Chỉ ra các rủi ro (ví dụ: nợ quá tập trung vào 1 khách hàng, hoặc nợ quá lớn).
3. Đưa ra 3 lời khuyên hành động cụ thể để tối ưu dòng tiền.

Hãy viết bằng tiếng Việt, ngắn gọn, súc tích, định dạng Markdown.`

// insightCallTimeout bounds one model call; it is detached from any single request
// because concurrent callers share the result
const insightCallTimeout = 45 * time.Second

// AIObserver records the latency and outcome of model calls
type AIObserver interface {
	ObserveAICall(elapsed time.Duration, err error)
}

// Insight is the analysis returned to the client
type Insight struct {
	Text       string      `json:"text"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Fallback   bool        `json:"fallback"`
}

// Paragraph is one line of the reply; lines starting with '#' are headings
type Paragraph struct {
	Text    string `json:"text"`
	Heading bool   `json:"heading"`
}

type promptDebtor struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Balance    int64     `json:"balance"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// InsightService asks the language model for a short financial analysis of the ledger
type InsightService struct {
	ledger    *LedgerService
	generator ai.TextGenerator
	observer  AIObserver
	timeout   time.Duration
	group     singleflight.Group
}

func NewInsightService(ledgerSvc *LedgerService, generator ai.TextGenerator) *InsightService {
	if generator == nil {
		generator = ai.Unavailable{}
	}
	return &InsightService{ledger: ledgerSvc, generator: generator, timeout: insightCallTimeout}
}

// SetObserver installs a metrics hook
func (s *InsightService) SetObserver(o AIObserver) {
	s.observer = o
}

// Analyze summarizes the current snapshot
func (s *InsightService) Analyze(ctx context.Context) Insight {
	state := s.ledger.Snapshot()
	text := s.Summarize(ctx, state.Debtors, state.Transactions)
	return Insight{
		Text:       text,
		Paragraphs: RenderParagraphs(text),
		Fallback:   text == InsightFallback,
	}
}

// Summarize never fails: any transport error or empty answer yields InsightFallback.
// Identical prompts in flight at the same time share one call.
func (s *InsightService) Summarize(ctx context.Context, debtors []models.Debtor, transactions []models.Transaction) string {
	prompt, err := BuildInsightPrompt(debtors)
	if err != nil {
		logger.Error("Failed to build insight prompt", "error", err)
		return InsightFallback
	}

	sum := sha256.Sum256([]byte(prompt))
	v, err, shared := s.group.Do(hex.EncodeToString(sum[:]), func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		text, err := s.generator.Generate(callCtx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ai.ErrEmptyReply
		}
		if s.observer != nil {
			s.observer.ObserveAICall(time.Since(start), err)
		}
		return text, err
	})
	if err != nil {
		logger.Warn("AI insight unavailable", "error", err, "shared", shared)
		return InsightFallback
	}
	return v.(string)
}

// BuildInsightPrompt lists each debtor's name, type, balance and last update as indented JSON,
// followed by the analysis instructions
func BuildInsightPrompt(debtors []models.Debtor) (string, error) {
	summary := make([]promptDebtor, 0, len(debtors))
	for _, d := range debtors {
		summary = append(summary, promptDebtor{
			Name:       d.Name,
			Type:       d.Type.LongLabel(),
			Balance:    d.TotalBalance,
			LastUpdate: d.LastUpdated,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return "", err
	}

	return "Dưới đây là danh sách công nợ của tôi:\n" +
		strings.TrimSuffix(buf.String(), "\n") +
		insightInstructions, nil
}

// RenderParagraphs splits the reply into lines for display
func RenderParagraphs(text string) []Paragraph {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]Paragraph, 0, len(lines))
	for _, line := range lines {
		out = append(out, Paragraph{Text: line, Heading: strings.HasPrefix(line, "#")})
	}
	return out
}
