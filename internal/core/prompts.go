package core

import "fmt"

// AutoDetect is the source language sentinel that lets the model detect it.
const AutoDetect = "auto"

const detectLanguagePrompt = "You are a language detection system. You will be given a text, and you must detect what language it is written in. Respond with just the ISO language code (e.g., 'en' for English, 'es' for Spanish, 'fr' for French, 'vi' for Vietnamese). Only provide the language code, nothing else."

const translationTail = "Only respond with the translated text, no commentary, make the response concise and correct as possible"

func translatePrompt(source, target string) string {
	if source == AutoDetect {
		return fmt.Sprintf("You are a professional translator. Detect the language of the provided text and translate it to %s. %s", target, translationTail)
	}
	return fmt.Sprintf("You are a professional translator. Translate the following text from %s to %s. %s", source, target, translationTail)
}

func dictionaryPrompt(word, language string) string {
	return fmt.Sprintf(`You are a dictionary API. Provide a dictionary definition for the word "%s" in %s. Return a JSON object with the following structure: { "definition": "the definition of the term, concise and short, straight to the point", "partOfSpeech": "the part of speech (noun, verb, etc.)", "examples": "example sentences using the word" }`, word, language)
}
