// Package prompt assembles the text blocks sent to the generative
// model: a fixed analyst persona, the retrieved incident context, and
// the verbatim user question.
package prompt

import (
	"fmt"
	"strings"

	"github.com/khanijo/minewatch/internal/store"
)

const persona = `You are a mining-safety analyst for a dashboard of DGMS accident records.
Answer using the incident data supplied below; it is the authoritative source.
Rules:
- Prioritize the supplied data over general knowledge.
- Never invent incidents, numbers, dates or locations.
- If the supplied data is insufficient to answer, say so plainly.
- Format answers with **bold** emphasis and bullet points where it helps readability.`

const noContextMarker = "No matching incidents were found in the database for this question."

// BuildChat merges the persona, the serialized context rows and the raw
// user question into one prompt. The only size bound is the upstream
// row cap; oversized prompts are the provider's problem.
func BuildChat(incidents []store.Incident, question string) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\nIncident data:\n")
	if len(incidents) == 0 {
		sb.WriteString(noContextMarker)
		sb.WriteString("\n")
	} else {
		for i, incident := range incidents {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, serializeIncident(incident)))
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

// TrendsSummary is the aggregate-statistics payload posted by the
// dashboard's analytics view.
type TrendsSummary struct {
	TotalIncidents  int            `json:"totalIncidents"`
	TotalCasualties int            `json:"totalCasualties"`
	TotalInjuries   int            `json:"totalInjuries"`
	TopCauses       []string       `json:"topCauses"`
	TopStates       []string       `json:"topStates"`
	TopMinerals     []string       `json:"topMinerals"`
	Years           []int          `json:"years"`
	Filters         map[string]any `json:"filters"`
}

// BuildTrends produces the prompt for a short narrative over the
// dashboard's aggregate statistics.
func BuildTrends(summary TrendsSummary) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\nWrite a short narrative summary (3-5 sentences) of these mining-accident statistics for a dashboard reader.\n\n")
	sb.WriteString(fmt.Sprintf("Total incidents: %d\n", summary.TotalIncidents))
	sb.WriteString(fmt.Sprintf("Total casualties: %d\n", summary.TotalCasualties))
	sb.WriteString(fmt.Sprintf("Total injuries: %d\n", summary.TotalInjuries))
	if len(summary.TopCauses) > 0 {
		sb.WriteString("Top causes: " + strings.Join(summary.TopCauses, ", ") + "\n")
	}
	if len(summary.TopStates) > 0 {
		sb.WriteString("Top states: " + strings.Join(summary.TopStates, ", ") + "\n")
	}
	if len(summary.TopMinerals) > 0 {
		sb.WriteString("Top minerals: " + strings.Join(summary.TopMinerals, ", ") + "\n")
	}
	if len(summary.Years) > 0 {
		years := make([]string, 0, len(summary.Years))
		for _, year := range summary.Years {
			years = append(years, fmt.Sprintf("%d", year))
		}
		sb.WriteString("Years covered: " + strings.Join(years, ", ") + "\n")
	}
	if len(summary.Filters) > 0 {
		sb.WriteString(fmt.Sprintf("Active filters: %v\n", summary.Filters))
	}
	return sb.String()
}

func serializeIncident(incident store.Incident) string {
	fields := []string{}
	appendField := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, label+": "+value)
		}
	}
	appendField("mine", incident.Mine)
	appendField("owner", incident.Owner)
	appendField("district", incident.District)
	appendField("state", incident.State)
	appendField("mineral", incident.Mineral)
	appendField("place", incident.Place)
	appendField("date", incident.Date)
	appendField("time", incident.Time)
	if incident.Casualties != nil {
		fields = append(fields, fmt.Sprintf("casualties: %d", *incident.Casualties))
	}
	if incident.Injured != nil {
		fields = append(fields, fmt.Sprintf("injured: %d", *incident.Injured))
	}
	appendField("cause", incident.Cause)
	appendField("cause_label", incident.CauseLabel)
	appendField("best_practices", incident.BestPractices)
	if len(fields) == 0 {
		return "(empty record)"
	}
	return strings.Join(fields, "; ")
}
