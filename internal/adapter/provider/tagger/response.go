package tagger

type tagRequest struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

type tagResponse struct {
	Tokens []apiToken `json:"tokens"`
}

type apiToken struct {
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	POS     string `json:"pos"`
	IsAlpha bool   `json:"is_alpha"`
}
