// Package gemini implements the external scoring assist boundary defined in
// internal/assist using Google's Gemini API. It translates candidate pools
// into prompts, parses the model's ranked response, and reports token usage.
package gemini
