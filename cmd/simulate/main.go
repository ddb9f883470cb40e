package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Simplified DTOs for the script
type uploadResponse struct {
	Data struct {
		Id     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type generateResponse struct {
	Data struct {
		RunId          string `json:"run_id"`
		ConversationId string `json:"conversation_id"`
		Status         string `json:"status"`
	} `json:"data"`
}

type runStatusResponse struct {
	Data struct {
		Stage           string `json:"stage"`
		Status          string `json:"status"`
		GenerationMode  string `json:"generation_mode"`
		Report          string `json:"report"`
		Error           string `json:"error"`
		PendingQuestion string `json:"pending_question"`
		Sufficiency     *struct {
			Level      string  `json:"level"`
			Confidence float64 `json:"confidence"`
			Reason     string  `json:"reason"`
		} `json:"sufficiency"`
	} `json:"data"`
}

type operationResponse struct {
	Data struct {
		Answer  string `json:"answer"`
		Report  string `json:"report"`
		Version int    `json:"version"`
	} `json:"data"`
}

func main() {
	header := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	header.Println("=== Report Generation Simulation Client ===")

	// 1. Upload a document so retrieval has something to find
	docId := upload("solar_energy.md", sampleDocument)
	ok.Printf("Document uploaded: %s\n", docId)

	warn.Println("Waiting for ingestion...")
	time.Sleep(3 * time.Second)

	// 2. Start a run
	runId, conversationId := generate("Write a report on residential solar panel economics")
	ok.Printf("Run started: %s (conversation %s)\n", runId, conversationId)

	// 3. Poll until the run finishes, answering the confirmation gate if it opens
	confirmed := false
	for {
		st := runStatus(runId)
		fmt.Printf("  stage=%s status=%s\n", st.Data.Stage, st.Data.Status)

		switch st.Data.Status {
		case "waiting_confirmation":
			if !confirmed {
				if st.Data.Sufficiency != nil {
					warn.Printf("Gate open: %s (confidence %.2f)\n", st.Data.Sufficiency.Reason, st.Data.Sufficiency.Confidence)
				}
				confirm(conversationId, true)
				ok.Println("Confirmed external search")
				confirmed = true
			}
		case "completed":
			ok.Printf("Run completed, mode=%s\n", st.Data.GenerationMode)
			header.Println("\n--- REPORT ---")
			fmt.Println(st.Data.Report)
			goto done
		case "failed":
			log.Fatalf("Run failed: %s", st.Data.Error)
		}

		time.Sleep(2 * time.Second)
	}

done:
	// 4. Exercise the short-circuit operations
	header.Println("\n--- FOLLOW-UP ---")
	answer := operation(conversationId, "follow-up", "What is the payback period mentioned?")
	fmt.Println(answer.Data.Answer)

	header.Println("\n--- MODIFY ---")
	modified := operation(conversationId, "modify", "Make the executive summary shorter")
	ok.Printf("New version: %d\n", modified.Data.Version)
}

func upload(filename, content string) string {
	var res uploadResponse
	post("/document/v1", map[string]interface{}{
		"filename": filename,
		"content":  content,
	}, &res)
	return res.Data.Id
}

func generate(query string) (string, string) {
	var res generateResponse
	post("/report/v1/generate", map[string]interface{}{
		"query": query,
	}, &res)
	return res.Data.RunId, res.Data.ConversationId
}

func runStatus(runId string) *runStatusResponse {
	var res runStatusResponse
	get("/report/v1/run/"+runId, &res)
	return &res
}

func confirm(conversationId string, confirmed bool) {
	post(fmt.Sprintf("/report/v1/%s/confirm", conversationId), map[string]interface{}{
		"confirmed": confirmed,
	}, nil)
}

func operation(conversationId, op, query string) *operationResponse {
	var res operationResponse
	post(fmt.Sprintf("/report/v1/%s/%s", conversationId, op), map[string]interface{}{
		"query": query,
	}, &res)
	return &res
}

func post(path string, body interface{}, out interface{}) {
	jsonBody, _ := json.Marshal(body)
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.Fatalf("POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			log.Fatalf("POST %s: bad response %s", path, string(respBody))
		}
	}
}

func get(path string, out interface{}) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.Fatalf("GET %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Fatalf("GET %s: bad response %s", path, string(respBody))
	}
}

const sampleDocument = `# Residential Solar Panel Economics

Residential solar installations have dropped in cost by more than 60% over
the last decade. A typical 6kW rooftop system costs between $15,000 and
$20,000 before incentives.

## Payback Period

With average electricity prices, the payback period for a residential
system is 7 to 10 years. Federal tax credits can shorten this to 5-8 years.

## Maintenance

Panels degrade roughly 0.5% per year and inverters typically need
replacement after 10-15 years at a cost of $1,000-$2,000.
`
