package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
)

const baseURL = "http://localhost:3000/api/copilot/v1"

// Simplified DTOs for the script
type askRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
}

type askResponse struct {
	Language   string `json:"language"`
	Answer     string `json:"answer"`
	Confidence string `json:"confidence"`
	Citations  []struct {
		DocTitle string `json:"doc_title"`
		Quote    string `json:"quote"`
	} `json:"citations"`
	MissingInfo *string `json:"missing_info"`
}

func main() {
	fmt.Println("=== Knowledge Copilot Simulation Client ===")

	token, err := signToken("sim-user-1", []string{"employee"}, map[string]interface{}{"department": "retail"})
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}

	questions := []askRequest{
		{Question: "What documents do I need to open a retail account?", Language: "auto"},
		{Question: "What is the monthly fee if my balance drops below 200 KWD?", Language: "en"},
		{Question: "ما هو الحد الأقصى للتمويل الشخصي؟", Language: "auto"},
		// Outside the employee scope: must refuse, never leak.
		{Question: "What collateral is acceptable for corporate credit facilities?", Language: "en"},
	}

	for _, q := range questions {
		color.Cyan("\nUSER: %s", q.Question)

		start := time.Now()
		res, err := ask(token, q)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		color.White("COPILOT [%s, %s]: %s", res.Confidence, elapsed.Round(time.Millisecond), res.Answer)
		for _, c := range res.Citations {
			color.Yellow("  ↳ %s: %q", c.DocTitle, c.Quote)
		}
		if res.MissingInfo != nil {
			color.Magenta("  missing_info: %s", *res.MissingInfo)
		}
	}
}

func signToken(sub string, roles []string, attributes map[string]interface{}) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"sub":        sub,
		"roles":      roles,
		"attributes": attributes,
		"exp":        time.Now().Add(1 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ask(token string, req askRequest) (*askResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/ask", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var res askResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
