package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTmpl = template.Must(template.New("run").Funcs(reportFuncs).Parse(RunOrgTemplate))

// FormatOrg renders the summary as an org-mode entry.
func (s Summary) FormatOrg() (string, error) {
	buf := new(bytes.Buffer)
	if err := reportTmpl.Execute(buf, s); err != nil {
		return "", fmt.Errorf("render run report: %w", err)
	}
	return buf.String(), nil
}

func (s Summary) WriteOrg(path string) error {
	out, err := s.FormatOrg()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0644)
}

const RunOrgTemplate = `
* RUN: {{.Ticker}} {{if .AssetClass}}({{.AssetClass}}){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:TICKER:      {{.Ticker}}
:ASSET_CLASS: {{.AssetClass}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_BAL:   {{printf "%.2f" .InitialCapital}}
:END_BAL:     {{printf "%.2f" .FinalValue}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:ENDED_BY:    {{if .Termination}}{{.Termination}}{{else}}(still active){{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Realized P/L:     *{{printf "%.2f" .NetRealized}}*
- Fees paid:        *{{printf "%.2f" .Fees}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*
- Profit Factor:    *{{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(n/a){{end}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Opens   | {{.Opens}} |
| Closes  | {{.Closes}} |
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |

{{- if .Notes }}
** Notes
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
