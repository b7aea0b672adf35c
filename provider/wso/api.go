package wso

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/util"
)

// eventsQuery selects the Wiener Staatsoper catalogue on the performa platform.
const eventsQuery = "events/?platform=web&organization=vso&page_size=100"

type Client struct {
	// APIBase is the performa API root, e.g. "https://live.performa.intio.tv/api/v1".
	APIBase string
	HTTP    *http.Client
}

type eventPage struct {
	Results []event `json:"results"`
	Next    *string `json:"next"`
}

type event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	BeginTime       string          `json:"begin_time"`
	VODAvailability json.RawMessage `json:"vod_availability"`
	Cast            []castEntry     `json:"cast"`
}

type castEntry struct {
	Role struct {
		Name string `json:"name"`
	} `json:"role"`
	Person struct {
		Name string `json:"name"`
	} `json:"person"`
}

func (e *event) performance() opera_archiver.Performance {
	p := opera_archiver.Performance{
		ID:           e.ID,
		Title:        e.Title,
		Date:         e.BeginTime,
		Kind:         opera_archiver.MediaVideo,
		Availability: availability(e.VODAvailability),
	}
	for _, c := range e.Cast {
		p.Cast.Add(c.Role.Name, c.Person.Name)
	}
	return p
}

// availability renders vod_availability, which the API has been seen to send as either a string or a number.
func availability(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// Events fetches the whole catalogue, following "next" links until the last page.
func (c *Client) Events(ctx context.Context) ([]opera_archiver.Performance, error) {
	var performances []opera_archiver.Performance
	next := util.JoinPath(c.APIBase, eventsQuery)
	for next != "" {
		var page eventPage
		if err := util.GetJSON(ctx, c.HTTP, next, &page); err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		for i := range page.Results {
			performances = append(performances, page.Results[i].performance())
		}
		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return performances, nil
}

// Event fetches a single event, including its cast.
func (c *Client) Event(ctx context.Context, id string) (opera_archiver.Performance, error) {
	var e event
	if err := util.GetJSON(ctx, c.HTTP, util.JoinPath(c.APIBase, "events/"+id+"/"), &e); err != nil {
		return opera_archiver.Performance{}, fmt.Errorf("failed to fetch event %s: %w", id, err)
	}
	return e.performance(), nil
}
