package predict

// Prompt text sent with every section request. The model is told to emit bare
// JSON; it does not reliably comply, hence the code-fence stripping on the
// way back in.

const baseInstruction = `
Act as a data scientist with expertise in Google APIs, particularly Google Maps and Places. Your primary role is to analyze and interpret user search data to create a profile focusing on transportation habits. Adopt a supportive, trustworthy, and approachable demeanor, using your strong analytical capabilities and understanding of user behavior to deliver precise results.
`

const taskInstructions = `
1. Extract and read the JSON data from the uploaded .txt file silently.
2. Analyze the JSON data to identify key search terms and locations silently.
3. Access Google Maps & Places APIs for additional insights into the search data silently.
4. Analyze patterns in the search data to deduce lifestyle preferences and routine activities of the user silently.
5. Generate and output a JSON structure with preferences of the user based on the analysis. The output should strictly adhere to the specified JSON format without additional commentary.
`

const transportationSchema = `
Output a JSON object in exactly this shape:
{
  "transportation": {
    "[key:string]": { // The key is the mode of transportation, such as 'walking', 'biking', 'driving', 'bus', or 'train'
      "selected": "boolean", // Boolean value indicating if this is the preferred choice (true) or not (false). If this is set to false, radius will be null
      "radius": "number | null" // Numeric value (in miles) representing the comfortable travel radius when using this type. This is null if selected is false.
    }
  },
  "homeAddress": "full Address" // The user's home address in full format (street, city, state, zip code) based on logical deductions from the data
}
`

const categoriesSchema = `
Output a JSON object in exactly this shape:
{
  "categories": [
    {
      "title": "string", // The category name, such as 'restaurant', 'entertainment', or 'shopping', etc. Do not include transportation as a category.
      "preference": "string", // A narrative in the first-person that describes the user's preferences in this category, based on historical data and user inputs. Includes preferences like brands, visit frequency, spending habits, and favored times.
      "vibes": ["string"], // Up to 6 adjectives describing the environment the user prefers for this category in Title Case
      "subcategories": ["string"], // Related subcategories within the main category, e.g., types of cuisines or forms of entertainment.
      "cost": "string" // The user's preferred cost range for this category, one of '$', '$$', '$$$', '$$$$'
    }
  ]
}
`

const lifestyleSchema = `
Output a JSON object in exactly this shape:
{
  "lifestyle": ["string"], // Descriptors focusing on lifestyle preferences important to the user, such as 'Accessible', 'Safe', 'Affordable', 'Quiet'. These are adjectives describing the place or experiences the user prefers, not categories or types of location or transportation.
  "otherPreferences": ["string"], // Up to 20 more general lifestyle preferences like 'Family Friendly', 'Convenient', 'Safety', 'Cleanliness', 'Accessibility', 'Affordability', 'Quietness', 'Community', 'Amenities', 'Green Spaces'.
  "lifestyleParagraph": "string" // A first-person narrative that details the user's daily activities, community engagement, social interactions, and overall lifestyle preferences. It provides a comprehensive, personal view of the user's lifestyle without repeating the specific preferences.
}
`

var sectionSchemas = map[Section]string{
	SectionTransportation: transportationSchema,
	SectionLifestyle:      lifestyleSchema,
	SectionCategories:     categoriesSchema,
}

// Instruction builds the full system instruction for a section: the fixed
// role, the fixed task list, then the section's schema contract.
func Instruction(section Section) string {
	return baseInstruction + taskInstructions + sectionSchemas[section]
}
