package fixtures

import (
	"github.com/lexora/translation-gateway/internal/model"
)

var (
	ValidLanguageCodes = []string{
		"en",
		"fr",
		"es",
		"de",
	}

	InvalidLanguageCodes = []string{
		"",
		"   ",
		"\t",
	}

	ValidPasswords = []string{
		"Str0ngPass",
		"An0therOne",
		"Pa55wordX",
	}

	InvalidPasswords = []string{
		"",
		"short1A",
		"alllowercase1",
		"ALLUPPERCASE1",
		"NoDigitsHere",
		"has space1A",
	}
)

func NewRegisterRequest(email, password string) model.RegisterRequest {
	return model.RegisterRequest{
		Email:    email,
		Password: password,
	}
}

func RegisterRequestValid() model.RegisterRequest {
	return NewRegisterRequest("alice@example.com", "Str0ngPass")
}

func RegisterRequestInvalidEmail() model.RegisterRequest {
	return NewRegisterRequest("not-an-email", "Str0ngPass")
}

func RegisterRequestWeakPassword() model.RegisterRequest {
	return NewRegisterRequest("alice@example.com", "weak")
}

func NewTranslateRequest(userID, text, source, target string) model.TranslateRequest {
	return model.TranslateRequest{
		UserID:     userID,
		InputText:  text,
		SourceLang: source,
		TargetLang: target,
	}
}

func TranslateRequestEnFr(userID string) model.TranslateRequest {
	return NewTranslateRequest(userID, "hello", "en", "fr")
}

func TranslateRequestEmptyInput(userID string) model.TranslateRequest {
	return NewTranslateRequest(userID, "   ", "en", "fr")
}

func TranslateRequestUnsupportedPair(userID string) model.TranslateRequest {
	return NewTranslateRequest(userID, "hello", "en", "xx")
}

func TranslateRequestWithExternalID(userID, externalID string) model.TranslateRequest {
	req := TranslateRequestEnFr(userID)
	req.ExternalID = externalID
	return req
}

func HistoryFilterFor(userID string) model.HistoryFilter {
	return model.HistoryFilter{
		UserID: userID,
		Limit:  50,
		Offset: 0,
	}
}

func HistoryFilterWithPagination(userID string, limit, offset int) model.HistoryFilter {
	return model.HistoryFilter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	}
}

func NewTranslationTask(taskID, userID string) model.TranslationTask {
	return model.TranslationTask{
		TaskID:     taskID,
		UserID:     userID,
		InputText:  "hello",
		SourceLang: "en",
		TargetLang: "fr",
	}
}
