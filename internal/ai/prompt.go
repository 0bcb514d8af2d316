package ai

import (
	"fmt"
	"strings"

	"github.com/camuig/krx-stock-report/internal/market"
)

const systemPrompt = `당신은 한국 주식시장(KRX)을 분석하는 애널리스트입니다.
제공된 일별 시세(종가, 전일비, 시가, 고가, 저가, 거래량)와 기간 요약을 바탕으로
이메일 본문에 들어갈 짧은 논평을 작성하세요.

규칙:
1. 5문장 이내, 평문으로 작성합니다. 마크다운이나 표는 사용하지 않습니다.
2. 기간 중 추세, 최근 변동성, 거래량 변화를 언급합니다.
3. 매수·매도 추천이나 목표 주가는 제시하지 않습니다.
4. 제공된 데이터에 없는 사실은 추측하지 않습니다.`

// BuildUserPrompt renders the summary and the recent records as a markdown table.
func BuildUserPrompt(company string, s market.Summary, recent market.History) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s\n", company))
	sb.WriteString(fmt.Sprintf("기간: %s ~ %s (%d 거래일)\n",
		s.From.Format("2006-01-02"), s.To.Format("2006-01-02"), s.Days))
	sb.WriteString(fmt.Sprintf("종가: %d원 → %d원 (%s%%)\n", s.FirstClose, s.LastClose, s.ChangePct.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("최고가: %d원 (%s), 최저가: %d원 (%s)\n",
		s.High, s.HighDate.Format("2006-01-02"), s.Low, s.LowDate.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("누적 거래량: %d\n\n", s.TotalVolume))

	if len(recent) == 0 {
		return sb.String()
	}

	sb.WriteString("## 최근 시세\n")
	sb.WriteString("| 날짜 | 종가 | 전일비 | 시가 | 고가 | 저가 | 거래량 |\n")
	sb.WriteString("|------|------|--------|------|------|------|--------|\n")
	for _, r := range recent {
		sb.WriteString(fmt.Sprintf("| %s | %d | %+d | %d | %d | %d | %d |\n",
			r.Date.Format("2006-01-02"), r.Close, r.Diff, r.Open, r.High, r.Low, r.Volume))
	}

	return sb.String()
}
