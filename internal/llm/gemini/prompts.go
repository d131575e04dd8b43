package gemini

import (
	"strings"
	"unicode/utf8"
)

// Character windows keep prompts inside the model's practical context while
// leaving room for the instructions. Translation gets the widest window so
// the English intermediate covers the whole contract body.
const (
	directWindow    = 8000
	englishWindow   = 16000
	translateWindow = 100000
)

const systemPrompt = `You are a multilingual contract metadata extraction specialist. You can read contracts in Swedish, Norwegian, Danish, Polish, Latvian, Lithuanian, and Estonian.

Extract the following 12 fields from contract documents. READ the contract in its original language, but RETURN all field values in ENGLISH:

Required fields (return values in ENGLISH):
1. Customer (CK) Entity - The Circle K entity name (keep original)
2. Supplier Entity - The supplier company name (keep original)
3. Effective Date - Contract start date (YYYY-MM-DD format)
4. Expiration Date - Contract end date (YYYY-MM-DD) or null if indefinite
5. Term Type - "Fixed term", "Evergreen", "Auto-renewing", etc. (English)
6. Governing Law - Jurisdiction (English, e.g., "Swedish law", "Polish law")
7. Contract Type - e.g., "Supply Agreement" (translate to English)
8. Contract Currency - Currency code (USD, EUR, SEK, PLN, etc.)
9. Payment Term - e.g., "Net 30", "Net 60" (English)
10. Termination for Convenience - "Yes" or "No"
11. Notice Period for Termination for Convenience - e.g., "30 days" or null
12. Party with the Right to Terminate for Convenience - "Both parties", "Customer only", "Supplier only", or null

TRANSLATION EXAMPLES:
- Swedish "Leveransavtal" -> "Supply Agreement"
- Polish "Umowa Dostawy" -> "Supply Agreement"
- Estonian "Tarnekokkulepe" -> "Supply Agreement"
- Swedish "svensk lag" -> "Swedish law"
- Polish "prawo polskie" -> "Polish law"
- Estonian "Eesti õigus" -> "Estonian law"

CRITICAL: NEVER leave Customer (CK) Entity or Supplier Entity empty. Search the entire contract for company names.

RULES:
1. Use null for fields not found or not applicable
2. Always use YYYY-MM-DD for dates
3. Keep company names in original form
4. Translate legal terms to English
5. Include "source_language" field (detected: sv, pl, et, no, da, lv, lt)
6. Include "confidence" field: "high", "medium", or "low"
7. Include "extraction_notes" for uncertainties

Return ONLY valid JSON.`

const translatorSystemPrompt = `You are a professional legal translator. Translate accurately while preserving dates, names, and legal terms.`

func buildDirectPrompt(text string) string {
	return "Extract metadata from this contract and return all values in ENGLISH:\n\nCONTRACT TEXT:\n" +
		clip(text, directWindow) +
		"\n\nReturn JSON with the 12 required fields, plus source_language and confidence."
}

func buildEnglishPrompt(text string) string {
	return "Extract metadata from this English contract:\n\nCONTRACT TEXT:\n" +
		clip(text, englishWindow) +
		"\n\nReturn JSON with the 12 required fields, plus source_language (of the ORIGINAL document) and confidence."
}

func buildTranslatePrompt(text string) string {
	return strings.TrimSpace(`Translate this contract to English. Preserve:
- All dates exactly as written
- All company names exactly as written
- All monetary amounts and currency references
- Legal terminology (translate to standard English legal terms)

CONTRACT TEXT:
`) + "\n" + clip(text, translateWindow)
}

// clip truncates to at most limit bytes without splitting a rune.
func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
