package ranking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

// categoriesPrompt asks the model for a bullet list of product categories
// fitted to the shopper's request, profile and location.
func categoriesPrompt(user UserContext) string {
	var b strings.Builder
	b.WriteString("You are a helpful shopping assistant. Given the user's input below, along with their location and profile details, ")
	b.WriteString("analyze their interests, preferences, and needs. Consider all these details carefully to identify up to 10 distinct product categories ")
	b.WriteString("that would be most relevant and appealing for them to shop for. Respond ONLY with a bullet point list of the product categories, no introduction or explanation.\n\n")
	fmt.Fprintf(&b, "User input: %q\n\n", userInputText(user))
	fmt.Fprintf(&b, "User location: %s\n\n", user.Location)
	b.WriteString("User profile details:\n")
	fmt.Fprintf(&b, "Age: %s\n", user.Age)
	fmt.Fprintf(&b, "Gender: %s\n", user.Gender)
	fmt.Fprintf(&b, "Budget range: %s\n", user.BudgetRange)
	fmt.Fprintf(&b, "Favorite product categories: %s\n", strings.Join(user.FavoriteCategories, ", "))
	fmt.Fprintf(&b, "Interests or hobbies: %s\n", user.Interests)
	b.WriteString("Generate a list of product categories based on the above information:\n\n")
	b.WriteString("Keep the product categories relevant to the user's input and profile details. ")
	b.WriteString("Make sure to include a variety of categories that reflect the user's interests and preferences. ")
	b.WriteString("The categories should be distinct and not overlap with each other. ")
	b.WriteString("Additionally, ensure that the categories are suitable for the user's location and budget range. ")
	b.WriteString("Additionally, keep the categories sufficiently detailed without being too specific. ")
	b.WriteString("Avoid using vague terms like 'clothes' or 'electronics'. ")
	b.WriteString("IMPORTANT: If the user's input mentions specific brands, you MUST include those brand names explicitly in the relevant categories. ")
	b.WriteString("Also, try to identify other brands the user might like based on their interests and preferences, and include those brand names in the categories where applicable. ")
	b.WriteString("Make sure to mention brand names clearly and explicitly in the categories when applicable. ")
	b.WriteString("However, maintain a balance between specific brand mentions and diverse categories, so as not to overemphasize brands.\n")
	return b.String()
}

// userInputText folds the shopping request, occasion and brand preferences
// into the free-text block both prompts lead with.
func userInputText(user UserContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Occasion: %s\n", user.Occasion)
	fmt.Fprintf(&b, "Preferred Brands: %s\n", strings.Join(user.PreferredBrands, ", "))
	fmt.Fprintf(&b, "Shopping Request: %s\n", user.ShoppingRequest)
	fmt.Fprintf(&b, "Favorite Categories: %s\n", strings.Join(user.FavoriteCategories, ", "))
	fmt.Fprintf(&b, "Interests or Hobbies: %s\n", user.Interests)
	if len(user.PreferredBrands) > 0 {
		fmt.Fprintf(&b, "IMPORTANT: User specifically prefers these brands: %s\n", strings.Join(user.PreferredBrands, ", "))
		b.WriteString("Please prioritize products from these brands when possible.\n")
	}
	return b.String()
}

// rankPrompt instructs the model to pick a diverse final selection from the
// scraped candidates and emit it in the labeled block format ParseRecommendations
// expects.
func rankPrompt(user UserContext, products []scraper.Candidate) string {
	profileJSON, _ := json.Marshal(map[string]string{
		"age":                 user.Age,
		"gender":              user.Gender,
		"budget_range":        user.BudgetRange,
		"favorite_categories": strings.Join(user.FavoriteCategories, ", "),
		"interests":           user.Interests,
		"location":            user.Location,
	})
	productsJSON, _ := json.Marshal(promptProducts(products))

	var b strings.Builder
	b.WriteString("You are an intelligent shopping recommendation engine designed to provide diverse, comprehensive product recommendations. Based on the following data:\n\n")
	fmt.Fprintf(&b, "USER'S SHOPPING REQUEST: %s\n\n", userInputText(user))
	fmt.Fprintf(&b, "USER PROFILE: %s\n\n", profileJSON)
	fmt.Fprintf(&b, "AVAILABLE PRODUCTS FROM AMAZON: %s\n\n", productsJSON)
	b.WriteString("TASK: Analyze the user's shopping request and provide a well-rounded selection of products that maximizes customer satisfaction through variety and relevance.\n\n")
	b.WriteString("CORE STRATEGY:\n")
	b.WriteString("1. COMPREHENSIVE COVERAGE: If the shopping request mentions multiple items or categories, ensure you include products from ALL mentioned categories\n")
	b.WriteString("2. STRATEGIC DIVERSIFICATION: Aim for 8-12 products that cover different aspects of the request\n")
	b.WriteString("3. BALANCED APPROACH: most products should directly match the shopping request, the rest should address related or complementary needs\n\n")
	b.WriteString("MANDATORY REQUIREMENTS:\n")
	b.WriteString("- NEVER select multiple products that serve identical purposes\n")
	b.WriteString("- NEVER focus only on the first item mentioned in the request\n")
	b.WriteString("- NEVER ignore latter parts of multi-item requests\n")
	b.WriteString("- ALWAYS ensure variety in brands, features, and price points\n\n")
	b.WriteString("OUTPUT FORMAT (for each recommended product):\n\n")
	b.WriteString("Product: [Product Title]\n")
	b.WriteString("URL: [Product URL]\n")
	b.WriteString("Price: [Product Price]\n")
	b.WriteString("Rating: [Product Rating]\n")
	b.WriteString("Image URL: [Image URL]\n")
	b.WriteString("Reasoning: [Explain specifically how this product fits the overall shopping strategy. Mention why it was chosen over similar alternatives and highlight unique features that differentiate it from other selections.]\n\n")
	b.WriteString("FINAL INSTRUCTION: Prioritize customer delight through comprehensive, thoughtful, and diverse product selection that exceeds expectations.")
	return b.String()
}

type promptProduct struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Price    string  `json:"price,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Category string  `json:"category,omitempty"`
}

func promptProducts(products []scraper.Candidate) []promptProduct {
	out := make([]promptProduct, 0, len(products))
	for _, p := range products {
		pp := promptProduct{
			Title:    p.Title,
			URL:      p.URL,
			Price:    p.PriceDisplay,
			ImageURL: p.ImageURL,
			Category: p.SourceCategory,
		}
		if p.Rating != nil {
			pp.Rating = *p.Rating
		}
		out = append(out, pp)
	}
	return out
}
