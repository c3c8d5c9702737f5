package services

import "fmt"

// ResearchSystemPrompt keeps the model to a bare JSON object.
const ResearchSystemPrompt = "You are a JSON-only output model. Do not include text outside of JSON. Never use markdown."

const researchPromptTemplate = `
You are a precise, JSON-only business research AI.
Research the company %q and return ONLY a JSON object in this exact shape:

{
  "websiteData": {
    "domain": "",
    "description": "",
    "foundedYear": "",
    "industry": "",
    "headquarters": "",
    "keyPeople": []
  },
  "newsData": {
    "articles": [
      {
        "title": "",
        "source": "",
        "date": "",
        "summary": ""
      }
    ]
  },
  "financialData": {
    "revenue": "",
    "employees": "",
    "marketCap": "",
    "stockSymbol": ""
  },
  "competitors": [
    {
      "name": "",
      "description": ""
    }
  ],
  "sourceLinks": [
    {
      "title": "",
      "url": ""
    }
  ],
  "summary": ""
}

If a field is unknown, write "Unknown". Always ensure valid JSON, no markdown or commentary.
`

// BuildResearchPrompt is the user message for one company.
func BuildResearchPrompt(companyName string) string {
	return fmt.Sprintf(researchPromptTemplate, companyName)
}
