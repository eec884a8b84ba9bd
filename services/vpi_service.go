package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// VpiReading represents one monthly value of the consumer price index
type VpiReading struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// VpiService fetches consumer price index readings from the statistics
// office feed so the UI can offer current values for index calculations
type VpiService struct {
	feedURL string
	client  *http.Client
}

// NewVpiService creates a new VpiService instance
func NewVpiService(feedURL string) *VpiService {
	return &VpiService{
		feedURL: feedURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchReadings downloads and parses the index feed. Errors surface to the
// caller unmodified; there is no retry.
func (s *VpiService) FetchReadings() ([]VpiReading, error) {
	resp, err := s.client.Get(s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch VPI feed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VPI feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read VPI feed: %v", err)
	}

	return ParseVpiReadings(body)
}

// LatestReading returns the most recent index value of the feed
func (s *VpiService) LatestReading() (*VpiReading, error) {
	readings, err := s.FetchReadings()
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[len(readings)-1], nil
}

// ParseVpiReadings parses an index XML document of the form
//
//	<verbraucherpreisindex basisjahr="2020">
//	  <wert jahr="2025" monat="06">121.3</wert>
//	</verbraucherpreisindex>
//
// Readings are returned in chronological order.
func ParseVpiReadings(data []byte) ([]VpiReading, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse VPI XML: %v", err)
	}

	root := doc.SelectElement("verbraucherpreisindex")
	if root == nil {
		return nil, errors.New("missing verbraucherpreisindex root element")
	}

	var readings []VpiReading
	for _, el := range root.SelectElements("wert") {
		year, err := strconv.Atoi(el.SelectAttrValue("jahr", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid jahr attribute: %v", err)
		}
		month, err := strconv.Atoi(el.SelectAttrValue("monat", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid monat attribute: %v", err)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("invalid monat value %d", month)
		}
		value, err := strconv.ParseFloat(el.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid index value %q: %v", el.Text(), err)
		}

		readings = append(readings, VpiReading{
			Month: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			Value: value,
		})
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Month.Before(readings[j].Month)
	})

	return readings, nil
}
