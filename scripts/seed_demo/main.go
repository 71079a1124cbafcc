// Command seed_demo fills a running instance with demo members so the
// console and the export flows have data to work against.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type studentPayload struct {
	Name         string `json:"name"`
	PRN          string `json:"prn"`
	Course       string `json:"course"`
	Mobile       string `json:"mobile"`
	ParentMobile string `json:"parentMobile"`
	RollNumber   string `json:"rollNumber"`
	Gender       string `json:"gender"`
	BloodGroup   string `json:"bloodGroup"`
	Category     string `json:"category"`
	DateOfBirth  string `json:"dateOfBirth"`
	AdmittedYear string `json:"admittedYear"`
}

type registerRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	StudentData studentPayload `json:"studentData"`
}

var courses = []string{"CSE", "IT", "AIML", "CSBS", "BBA", "BCA"}
var bloodGroups = []string{"A+", "B+", "O+", "AB+"}

func main() {
	var (
		base       string
		serviceKey string
		count      int
		timeout    time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&serviceKey, "service-key", "", "Shared service key, sent with every request")
	flag.IntVar(&count, "count", 12, "Number of demo students to register")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	if serviceKey == "" {
		log.Fatal("-service-key is required; every route behind the API prefix expects it")
	}

	client := &http.Client{Timeout: timeout}

	created := 0
	for i := 0; i < count; i++ {
		req := registerRequest{
			Email:    fmt.Sprintf("demo.student%03d@example.edu", i+1),
			Password: fmt.Sprintf("demo-pass-%03d", i+1),
			StudentData: studentPayload{
				Name:         fmt.Sprintf("Demo Student %03d", i+1),
				PRN:          fmt.Sprintf("22300%05d", 10000+i),
				Course:       courses[i%len(courses)],
				Mobile:       fmt.Sprintf("98%08d", 10000000+i),
				ParentMobile: fmt.Sprintf("91%08d", 20000000+i),
				RollNumber:   fmt.Sprintf("%d", i+1),
				Gender:       []string{"Female", "Male"}[i%2],
				BloodGroup:   bloodGroups[i%len(bloodGroups)],
				Category:     "Open",
				DateOfBirth:  fmt.Sprintf("%02d/%02d/2004", 1+i%28, 1+i%12),
				AdmittedYear: fmt.Sprintf("%d", 2021+i%4),
			},
		}

		status, body, err := postJSON(client, base+"/register-student", serviceKey, req)
		if err != nil {
			log.Fatalf("register request failed: %v", err)
		}
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			log.Printf("skipping %s: already registered", req.StudentData.PRN)
		default:
			log.Fatalf("unexpected status %d: %s", status, body)
		}
	}
	log.Printf("registered %d of %d demo students", created, count)

	req, err := http.NewRequest(http.MethodGet, base+"/dashboard-stats", nil)
	if err != nil {
		log.Fatalf("build stats request: %v", err)
	}
	req.Header.Set("X-Service-Key", serviceKey)
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("fetch stats: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("stats returned %d: %s", resp.StatusCode, body)
	}
	fmt.Println(string(body))
}

func postJSON(client *http.Client, url, serviceKey string, payload any) (int, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", serviceKey)
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}
