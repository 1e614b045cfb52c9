package generator

import "github.com/giantswarm/chatbot-qa/internal/qa"

// synthesisSystemPrompt instructs the generation model to produce one test
// question plus its expected answer as a single JSON object.
const synthesisSystemPrompt = `You are a QA engineer writing test questions for a document-grounded support chatbot.

You receive one document excerpt. Write exactly ONE test question that can be answered from that excerpt, together with the expected answer.

Respond with a single JSON object and nothing else:
{"question": "...", "expected_answer": "..."}

The question must be natural, specific and self-contained. The expected answer must be fully supported by the excerpt.`

// translationSystemPrompt instructs the generation model to translate an
// existing test question into a target language.
const translationSystemPrompt = `You are a QA engineer preparing multilingual test questions for a support chatbot.

You receive a test question and its expected answer. Translate both into the requested target language, keeping the meaning intact. A light paraphrase is acceptable; invented facts are not.

Respond with a single JSON object and nothing else:
{"question": "...", "expected_answer": "..."}`

// categoryInstructions adds the per-category slant to the synthesis prompt.
var categoryInstructions = map[qa.Category]string{
	qa.CategoryRetrieval: "Write a question whose answer requires finding a specific fact inside the excerpt. " +
		"The question should test whether the right passage is retrieved.",
	qa.CategoryAccuracy: "Write a question about a concrete detail (number, date, name, condition) stated in the excerpt. " +
		"The expected answer must quote that detail precisely.",
	qa.CategoryCitation: "Write a question where citing the source document matters, such as a policy or rule the user might dispute. " +
		"The expected answer should state the fact that must be backed by a citation.",
	qa.CategoryHallucination: "Write a question that is related to the excerpt's topic but asks for a detail the excerpt does NOT contain. " +
		"The expected answer is an honest statement that this information is not available, optionally with the related context that IS available.",
	qa.CategoryConsistency: "Write a question that combines or restates information from the excerpt in different words, " +
		"so the same facts must come back consistently. The expected answer restates those facts.",
}
