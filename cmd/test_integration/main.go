package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		baseURL = v
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Creating session...")
	var created struct {
		SessionID string `json:"session_id"`
	}
	if !sendRequest("POST", "/api/sessions", "", nil, &created) || created.SessionID == "" {
		fmt.Println("FAILED: Create session")
		os.Exit(1)
	}
	id := created.SessionID
	fmt.Println("PASSED: Create session", id)

	fmt.Println("2. Setting career and values...")
	if !sendRequest("POST", "/api/career", id, map[string]string{"career": "간호사"}, nil) ||
		!sendRequest("POST", "/api/values", id, map[string][]string{"values": {"사회적 가치 - 사회에 긍정적인 영향, 봉사"}}, nil) {
		fmt.Println("FAILED: Set career/values")
		os.Exit(1)
	}
	fmt.Println("PASSED: Set career/values")

	fmt.Println("3. Generating two rounds...")
	for i := 0; i < 2; i++ {
		if !sendRequest("POST", "/api/generate-issues", id, nil, nil) {
			fmt.Println("FAILED: Generate issues")
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: Generate issues")

	fmt.Println("4. Fetching duplication report...")
	var rep struct {
		Severity string `json:"severity"`
		Report   struct {
			TotalItems      int     `json:"total_items"`
			DuplicationRate float64 `json:"duplication_rate"`
		} `json:"report"`
	}
	if !sendRequest("GET", "/api/sessions/"+id+"/report", "", nil, &rep) || rep.Report.TotalItems == 0 {
		fmt.Println("FAILED: Report")
		os.Exit(1)
	}
	fmt.Printf("PASSED: Report (%d items, %.2f%% duplicated, %s)\n",
		rep.Report.TotalItems, rep.Report.DuplicationRate*100, rep.Severity)
}

func sendRequest(method, endpoint, sessionID string, payload, out interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("session-id", sessionID)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
