package deepface

import (
	"bytes"
	"encoding/json"
)

// FacialArea is the sidecar's face rectangle shape.
type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// AnalyzeRequest for POST /analyze.
type AnalyzeRequest struct {
	Img              string   `json:"img"` // base64 encoded image
	Actions          []string `json:"actions"`
	Detector         string   `json:"detector"`
	EnforceDetection bool     `json:"enforce_detection"`
}

// AnalyzeResult is one per-face analysis.
type AnalyzeResult struct {
	Region          FacialArea         `json:"region"`
	DominantEmotion string             `json:"dominant_emotion"`
	Emotion         map[string]float64 `json:"emotion"`
}

// AnalyzeResponse from POST /analyze. The upstream analyzer returns a
// single object for one face or an array for several; older sidecar
// builds wrap either in {"results": ...}. All three shapes are collapsed
// here so downstream code only ever sees a list.
type AnalyzeResponse struct {
	Results []AnalyzeResult
}

func (r *AnalyzeResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Results)
	}

	var wrapper struct {
		Results []AnalyzeResult `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil && wrapper.Results != nil {
		r.Results = wrapper.Results
		return nil
	}

	var single AnalyzeResult
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	r.Results = []AnalyzeResult{single}
	return nil
}

// First returns the first analysis result, mirroring the reference
// behavior of taking element zero of a per-face sequence.
func (r *AnalyzeResponse) First() (AnalyzeResult, bool) {
	if len(r.Results) == 0 {
		return AnalyzeResult{}, false
	}
	return r.Results[0], true
}

// RepresentRequest for POST /represent.
type RepresentRequest struct {
	Img              string `json:"img"`
	Model            string `json:"model"`
	Detector         string `json:"detector"`
	EnforceDetection bool   `json:"enforce_detection"`
}

// RepresentResponse from POST /represent.
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding  []float64  `json:"embedding"`
	FacialArea FacialArea `json:"facial_area"`
}

// LandmarksRequest for POST /landmarks.
type LandmarksRequest struct {
	Img    string     `json:"img"`
	Region FacialArea `json:"region"`
}

// LandmarksResponse from POST /landmarks: the 68-point topology as
// ordered [x, y] pairs.
type LandmarksResponse struct {
	Points [][2]int `json:"points"`
}

// FindRequest for POST /find.
type FindRequest struct {
	Img              string `json:"img"`
	DBPath           string `json:"db_path"`
	Model            string `json:"model"`
	Detector         string `json:"detector"`
	EnforceDetection bool   `json:"enforce_detection"`
}

// FindResult is one ranked candidate; lower distance is a closer match.
type FindResult struct {
	Identity string  `json:"identity"`
	Distance float64 `json:"distance"`
}

// FindResponse from POST /find. Accepts both the bare-array and the
// {"results": ...} wrapper shape, like AnalyzeResponse.
type FindResponse struct {
	Results []FindResult
}

func (r *FindResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Results)
	}

	var wrapper struct {
		Results []FindResult `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	r.Results = wrapper.Results
	return nil
}
