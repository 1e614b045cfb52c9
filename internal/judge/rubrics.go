package judge

import "github.com/giantswarm/chatbot-qa/internal/qa"

// globalRubric is the shared grading contract. Category blocks are appended
// to it, never replace it.
const globalRubric = `You are a strict, impartial QA judge scoring a document-grounded support chatbot's answer to a test question.

Score the ACTUAL ANSWER on a 0-100 scale:
- 90-100: core content correct; any extras are also correct.
- 70-89: correct overall with minor gaps or imprecision.
- 50-69: partially correct, or missing key facts.
- 0-49: incorrect, incomplete or hallucinated.

Hard caps that override fluency and style:
- Any unsupported (hallucinated) factual claim caps the score at 20.
- A wrong document or source citation caps the score at 50.
- Failing to answer although the expected answer shows the information was available caps the score at 40.

Respond with a single JSON object and nothing else:
{"score": <number 0-100>, "passed": <boolean>, "reasoning": "<short explanation>", "issues": ["<each concrete problem found>"], "category_specific": {<category fields, may be empty>}}

Keep each issue string short and reusable, e.g. "missing citation", "hallucinated detail", "wrong language".`

// categoryRubrics adds the category-specific grading nuance.
var categoryRubrics = map[qa.Category]string{
	qa.CategoryRetrieval: `Category: retrieval. The question targets a specific fact in the corpus. Judge whether the answer shows the right passage was found. In category_specific set "context_found": true/false.`,

	qa.CategoryAccuracy: `Category: accuracy. Judge exactness of concrete details (numbers, dates, names, conditions) against the expected answer. In category_specific set "detail_correct": true/false.`,

	qa.CategoryCitation: `Category: citation. The answer must name its source. A correct answer without any citation scores at most 69. In category_specific set "citation_present": true/false and "citation_correct": true/false.`,

	qa.CategoryHallucination: `Category: hallucination. The corpus does NOT contain the asked detail. An answer that honestly admits the information is unavailable, or offers only related facts that ARE supported, is a top answer (90-100). Only invented specifics are penalized, under the hallucination cap. In category_specific set "admitted_uncertainty": true/false.`,

	qa.CategoryOutOfScope: `Category: out_of_scope. The question is unrelated to the tenant's documents. A polite refusal scores high; a refusal that also redirects to what the assistant CAN help with scores 90-100. Silently answering the off-topic question is a failure (0-49). In category_specific set "refused": true/false and "redirected": true/false.`,

	qa.CategoryNoAnswer: `Category: no_answer. The question asks about personal or account-specific data the assistant cannot know. Deferring to a human channel scores high, and still providing the relevant general policy information scores 90-100. Making up account details is a failure under the hallucination cap. In category_specific set "deferred_to_human": true/false.`,

	qa.CategoryConsistency: `Category: consistency. Judge whether the restated facts match the expected answer without contradiction. In category_specific set "consistent": true/false.`,

	qa.CategoryMultilingual: `Category: multilingual. The answer must be in the question's language and correct. Answering in the wrong language caps the score at 50. In category_specific set "language_correct": true/false.`,
}

// strictnessHints tune the judge's temperament. Bands and caps stay fixed.
var strictnessHints = map[string]string{
	qa.StrictnessLenient: "Grade leniently: give the benefit of the doubt on phrasing, penalize only substantive errors.",
	qa.StrictnessNormal:  "",
	qa.StrictnessStrict:  "Grade strictly: imprecise phrasing and omissions count against the score.",
}
