package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"keepcooking/internal/apperrors"
)

const recipeSystemPrompt = `You are a cooking assistant. Be concise, precise, and tool-driven.

GOAL
Given a user request about dishes or ingredients, return 1 well-matched recipe with ingredients (and amounts), clear steps, and helpful notes.

TOOL USE
1) If the user names a dish (even approximately), CALL search_meal_by_name(name).
2) If the user does NOT name a dish:
   - If they give one main ingredient, CALL search_meal_by_main_ingredient(ingredient).
   - If they give multiple ingredients AND search_meal_by_multiple_ingredients is available, CALL search_meal_by_multiple_ingredients(ingredients). Otherwise fall back to search_meal_by_main_ingredient on the strongest ingredient.
3) From the candidates, pick the top 1-3 most relevant by matching cuisine, keywords (e.g., "spicy", "vegan"), and prep method.
4) For each chosen candidate, CALL lookup_meal_details_by_id(id) to get full details before answering.

MATCHING & ADJUSTMENTS
- If no exact match: pick the closest dish and adapt it. Clearly label changes under "Modifications".
- If a constraint is stated (diet, spice level, equipment, time), prefer matches that satisfy it; otherwise adapt and explain.
- Do not invent ingredients or steps not present in the looked-up details unless clearly labeled under "Modifications".
- If TheMealDB data is missing amounts, state "amount not provided" rather than guessing.

FINAL ANSWER
Respond with a single JSON object, no surrounding prose:
{"title": "<meal name>", "message": "<the full recipe as Markdown: ingredients with amounts, numbered steps, and a Modifications section only if you adjusted it, under ~250 words>", "image_url": "<meal thumbnail url or empty string>", "video_url": "<youtube url or empty string>"}`

// RecipeOutput is the structured recipe the agent produces; it becomes the
// payload of a draft post.
type RecipeOutput struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`
}

// maxToolRounds bounds the tool-call loop; a well-behaved run needs two or
// three rounds (search, lookup, answer).
const maxToolRounds = 6

// RecipeAgent turns a free-text query into a recipe by driving the LLM
// through the TheMealDB tools.
type RecipeAgent struct {
	llm   *LLMService
	meals *MealDBService
}

func NewRecipeAgent(llm *LLMService, meals *MealDBService) *RecipeAgent {
	return &RecipeAgent{llm: llm, meals: meals}
}

// Generate runs the agent loop. Any upstream failure collapses into
// ErrGeneration; callers never persist a partial recipe.
func (a *RecipeAgent) Generate(ctx context.Context, query string) (*RecipeOutput, error) {
	messages := []ChatMessage{
		{Role: "system", Content: recipeSystemPrompt},
		{Role: "user", Content: query},
	}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := a.llm.Chat(ctx, &ChatRequest{
			Messages: messages,
			Tools:    a.tools(),
		})
		if err != nil {
			log.Printf("Recipe generation failed: %v", err)
			return nil, apperrors.ErrGeneration
		}

		if len(msg.ToolCalls) == 0 {
			output, err := parseRecipeOutput(msg.Text())
			if err != nil {
				log.Printf("Recipe generation produced unparsable output: %v", err)
				return nil, apperrors.ErrGeneration
			}
			return output, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			result := a.dispatch(ctx, call)
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	log.Printf("Recipe generation exceeded %d tool rounds", maxToolRounds)
	return nil, apperrors.ErrGeneration
}

// dispatch executes one tool call and returns its JSON result. Tool errors
// go back to the model as text so it can recover or apologize.
func (a *RecipeAgent) dispatch(ctx context.Context, call ToolCall) string {
	var args struct {
		Name        string   `json:"name"`
		Ingredient  string   `json:"ingredient"`
		Ingredients []string `json:"ingredients"`
		ID          string   `json:"id"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf(`{"error": "bad arguments: %v"}`, err)
	}

	var result interface{}
	var err error
	switch call.Function.Name {
	case "search_meal_by_name":
		result, err = a.meals.SearchByName(ctx, args.Name)
	case "search_meal_by_main_ingredient":
		result, err = a.meals.FilterByIngredient(ctx, args.Ingredient)
	case "search_meal_by_multiple_ingredients":
		result, err = a.meals.FilterByIngredients(ctx, args.Ingredients)
	case "lookup_meal_details_by_id":
		result, err = a.meals.LookupByID(ctx, args.ID)
	default:
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, call.Function.Name)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(encoded)
}

func (a *RecipeAgent) tools() []ChatTool {
	tools := []ChatTool{
		toolDef("search_meal_by_name",
			"Takes the name of a meal (case insensitive, fuzzy OK) and returns potentially matching meals with ids for detail lookup",
			map[string]interface{}{"name": prop("string", "Meal name")},
			[]string{"name"}),
		toolDef("search_meal_by_main_ingredient",
			"Takes the main ingredient of a meal and returns potentially matching meals with ids for detail lookup",
			map[string]interface{}{"ingredient": prop("string", "Main ingredient of a meal")},
			[]string{"ingredient"}),
		toolDef("lookup_meal_details_by_id",
			"Takes the exact id of a meal and returns its full details: name, type, instructions, ingredients with amounts, thumbnail url, and youtube link",
			map[string]interface{}{"id": prop("string", "Meal id, must match exactly")},
			[]string{"id"}),
	}
	// The multi-ingredient filter only exists on the premium API tier.
	if a.meals.Premium() {
		tools = append(tools, toolDef("search_meal_by_multiple_ingredients",
			"Takes a list of ingredients and returns potentially matching meals with ids for detail lookup",
			map[string]interface{}{"ingredients": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "List of ingredients to search for",
			}},
			[]string{"ingredients"}))
	}
	return tools
}

func toolDef(name, description string, props map[string]interface{}, required []string) ChatTool {
	return ChatTool{
		Type: "function",
		Function: ChatToolFunction{
			Name:        name,
			Description: description,
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		},
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

// parseRecipeOutput decodes the agent's final JSON, tolerating a Markdown
// code fence around it.
func parseRecipeOutput(content string) (*RecipeOutput, error) {
	content = stripJSONFence(content)

	var output RecipeOutput
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return nil, fmt.Errorf("decode recipe output: %w", err)
	}
	if output.Title == "" || output.Message == "" {
		return nil, fmt.Errorf("recipe output missing title or message")
	}
	return &output, nil
}

func stripJSONFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
