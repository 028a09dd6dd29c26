// Package statistics holds the impact figures shown next to detection results.
package statistics

import "misogyny-detector/internal/models"

// records is fixed at build time; order is part of the API.
var records = []models.StatisticRecord{
	{
		Title:  "Online Harassment",
		Value:  "73%",
		Source: "Pew Research Center",
		Info:   "of women have experienced some form of online harassment, with women being twice as likely as men to experience sexual harassment online.",
		Impact: "This means that most women you know have likely faced harassment simply for existing online.",
		Action: "Think about how your words might contribute to this experience.",
	},
	{
		Title:  "Mental Health Impact",
		Value:  "51%",
		Source: "Women's Media Center",
		Info:   "of women who experienced online abuse reported suffering from stress, anxiety, or panic attacks as a result.",
		Impact: "Words online can cause real psychological harm that affects daily life.",
		Action: "Consider: would you say this to someone's face knowing it might cause them anxiety?",
	},
	{
		Title:  "Professional Consequences",
		Value:  "38%",
		Source: "Amnesty International",
		Info:   "of women who experienced online abuse reported self-censoring their online posts to avoid harassment, limiting their professional visibility.",
		Impact: "This silencing effect means important voices are missing from online conversations.",
		Action: "Your words could be preventing someone from sharing their expertise or perspective.",
	},
	{
		Title:  "Platform Response",
		Value:  "27%",
		Source: "UN Women",
		Info:   "of women who reported online abuse said platforms took action against their abusers, highlighting the gap in protection mechanisms.",
		Impact: "With limited platform protection, individual behavior change is crucial for safer spaces.",
		Action: "You can be part of the solution by choosing respectful language.",
	},
}

// Records returns a copy of the statistics in display order.
func Records() []models.StatisticRecord {
	out := make([]models.StatisticRecord, len(records))
	copy(out, records)
	return out
}
