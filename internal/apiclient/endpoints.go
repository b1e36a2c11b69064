package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fitsync/fitsync/internal/models"
)

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health hits the /healthz endpoint to verify server reachability.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.Get(ctx, "/healthz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Auth ---

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// Login authenticates and returns the bearer token plus the server profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Post(ctx, "/v1/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Profile ---

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var resp models.Profile
	if err := c.Get(ctx, fmt.Sprintf("/v1/profiles/%s", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveProfile writes the profile to the server and returns the stored version.
func (c *Client) SaveProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	var resp models.Profile
	if err := c.Put(ctx, fmt.Sprintf("/v1/profiles/%s", p.ID), p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Food catalog ---

// SearchFoods queries the remote food catalog.
func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]models.Food, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	var resp []models.Food
	if err := c.Get(ctx, "/v1/foods?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFood fetches one catalog item.
func (c *Client) GetFood(ctx context.Context, id string) (*models.Food, error) {
	var resp models.Food
	if err := c.Get(ctx, fmt.Sprintf("/v1/foods/%s", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveFood creates or updates a custom food on the server.
func (c *Client) SaveFood(ctx context.Context, f *models.Food) (*models.Food, error) {
	var resp models.Food
	if f.ID == "" {
		if err := c.Post(ctx, "/v1/foods", f, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
	if err := c.Put(ctx, fmt.Sprintf("/v1/foods/%s", f.ID), f, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFood removes a custom food from the server.
func (c *Client) DeleteFood(ctx context.Context, id string) error {
	return c.Delete(ctx, fmt.Sprintf("/v1/foods/%s", id))
}

// --- Daily diary ---

// DiaryResponse is a diary aggregate with its entries as the server sees them.
type DiaryResponse struct {
	Diary   models.DailyDiary  `json:"diary"`
	Entries []models.FoodEntry `json:"entries"`
}

// GetDiary fetches the diary for a YYYY-MM-DD date.
func (c *Client) GetDiary(ctx context.Context, date string) (*DiaryResponse, error) {
	var resp DiaryResponse
	if err := c.Get(ctx, fmt.Sprintf("/v1/diaries/%s", date), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateDiaryRequest creates a diary for a date seeded with goals.
type CreateDiaryRequest struct {
	Date  string              `json:"date"`
	Goals models.ProfileGoals `json:"goals"`
}

// CreateDiary creates the diary for a date on the server.
func (c *Client) CreateDiary(ctx context.Context, date string, goals models.ProfileGoals) (*DiaryResponse, error) {
	var resp DiaryResponse
	if err := c.Post(ctx, "/v1/diaries", CreateDiaryRequest{Date: date, Goals: goals}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EntryResponse is the server's answer to an entry mutation: the canonical
// entry plus the parent diary with server-recomputed totals.
type EntryResponse struct {
	Entry models.FoodEntry  `json:"entry"`
	Diary models.DailyDiary `json:"diary"`
}

// CreateFoodEntry logs an entry against the diary for a date. The server
// assigns the canonical entry id and recomputes the diary totals.
func (c *Client) CreateFoodEntry(ctx context.Context, date string, entry *models.FoodEntry) (*EntryResponse, error) {
	var resp EntryResponse
	if err := c.Post(ctx, fmt.Sprintf("/v1/diaries/%s/entries", date), entry, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFoodEntry removes an entry; the response carries the recomputed diary.
func (c *Client) DeleteFoodEntry(ctx context.Context, date, entryID string) (*models.DailyDiary, error) {
	var resp struct {
		Diary models.DailyDiary `json:"diary"`
	}
	if err := c.do(ctx, "DELETE", fmt.Sprintf("/v1/diaries/%s/entries/%s", date, entryID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Diary, nil
}

// --- Activity diary ---

// UploadActivityDiary uploads a closed workout session and returns the
// server-assigned session.
func (c *Client) UploadActivityDiary(ctx context.Context, session *models.ActivityDiary) (*models.ActivityDiary, error) {
	var resp models.ActivityDiary
	if err := c.Post(ctx, "/v1/activities", session, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetActivityDiary fetches the session for a YYYY-MM-DD date.
func (c *Client) GetActivityDiary(ctx context.Context, date string) (*models.ActivityDiary, error) {
	var resp models.ActivityDiary
	if err := c.Get(ctx, fmt.Sprintf("/v1/activities/%s", date), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
