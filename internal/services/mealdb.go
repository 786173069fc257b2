package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// MealDBService wraps the TheMealDB JSON API. The free tier (key "1") serves
// v1 without the multi-ingredient filter; any other key is treated as
// premium and routed to v2.
type MealDBService struct {
	baseURL string
	premium bool
	client  *http.Client
}

func NewMealDBService() *MealDBService {
	key := os.Getenv("THEMEALDB_API_KEY")
	if key == "" {
		key = "1"
	}
	premium := key != "1"

	base := os.Getenv("THEMEALDB_BASE_URL")
	if base == "" {
		version := "v1"
		if premium {
			version = "v2"
		}
		base = fmt.Sprintf("https://www.themealdb.com/api/json/%s/%s", version, key)
	}

	return &MealDBService{
		baseURL: base,
		premium: premium,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *MealDBService) Premium() bool {
	return s.premium
}

// MealSummary is a search hit: enough to pick a candidate, the id is the key
// for a detail lookup.
type MealSummary struct {
	MealID   string `json:"meal_id"`
	MealName string `json:"meal_name"`
}

type MealIngredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

type MealDetail struct {
	MealID       string           `json:"meal_id"`
	MealName     string           `json:"meal_name"`
	MealType     string           `json:"meal_type"`
	Instructions string           `json:"instructions"`
	Ingredients  []MealIngredient `json:"ingredients"`
	Thumbnail    string           `json:"thumbnail"`
	Video        string           `json:"video"`
}

type mealDBEnvelope struct {
	Meals []map[string]interface{} `json:"meals"`
}

// SearchByName finds meals by (fuzzy) dish name.
func (s *MealDBService) SearchByName(ctx context.Context, name string) ([]MealSummary, error) {
	return s.summaries(ctx, "/search.php", url.Values{"s": {name}})
}

// FilterByIngredient finds meals containing one main ingredient.
func (s *MealDBService) FilterByIngredient(ctx context.Context, ingredient string) ([]MealSummary, error) {
	return s.summaries(ctx, "/filter.php", url.Values{"i": {ingredient}})
}

// FilterByIngredients finds meals matching several ingredients at once.
// Premium only; the agent does not expose this tool on the free tier.
func (s *MealDBService) FilterByIngredients(ctx context.Context, ingredients []string) ([]MealSummary, error) {
	return s.summaries(ctx, "/filter.php", url.Values{"i": {strings.Join(ingredients, ",")}})
}

// LookupByID returns a meal's full details, with the twenty numbered
// ingredient/measure column pairs folded into a list.
func (s *MealDBService) LookupByID(ctx context.Context, id string) (*MealDetail, error) {
	env, err := s.get(ctx, "/lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(env.Meals) == 0 {
		return nil, nil
	}
	meal := env.Meals[0]

	var ingredients []MealIngredient
	for i := 1; i <= 20; i++ {
		name := str(meal, fmt.Sprintf("strIngredient%d", i))
		measure := str(meal, fmt.Sprintf("strMeasure%d", i))
		if strings.TrimSpace(name) == "" || strings.TrimSpace(measure) == "" {
			continue
		}
		ingredients = append(ingredients, MealIngredient{Name: name, Measure: measure})
	}

	detail := &MealDetail{
		MealID:       str(meal, "idMeal"),
		MealName:     str(meal, "strMeal"),
		MealType:     str(meal, "strArea"),
		Instructions: str(meal, "strInstructions"),
		Ingredients:  ingredients,
		Video:        str(meal, "strYoutube"),
	}
	if thumb := str(meal, "strMealThumb"); thumb != "" {
		detail.Thumbnail = thumb + "/medium"
	}
	return detail, nil
}

func (s *MealDBService) summaries(ctx context.Context, path string, params url.Values) ([]MealSummary, error) {
	env, err := s.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	meals := make([]MealSummary, 0, len(env.Meals))
	for _, meal := range env.Meals {
		meals = append(meals, MealSummary{
			MealID:   str(meal, "idMeal"),
			MealName: str(meal, "strMeal"),
		})
	}
	return meals, nil
}

func (s *MealDBService) get(ctx context.Context, path string, params url.Values) (*mealDBEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create mealdb request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mealdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mealdb returned status %d", resp.StatusCode)
	}

	var env mealDBEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode mealdb response: %w", err)
	}
	return &env, nil
}

// str pulls a string field from the loosely typed API payload. Absent and
// null both come back empty.
func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
