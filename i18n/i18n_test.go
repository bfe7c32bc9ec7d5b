package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("fr-FR,fr;q=0.8") != "fr" {
		t.Fatalf("expected fr")
	}
	if DetectLanguage("FR-ca") != "fr" {
		t.Fatalf("expected fr for FR-ca")
	}
	if DetectLanguage("de-DE,en;q=0.5") != "en" {
		t.Fatalf("expected en as first supported")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation
	if T("es", "required") != "Required" {
		t.Fatalf("expected en fallback for es lang")
	}
	// code missing from fr catalog -> en
	if T("fr", "field_tax_id") != "Tax ID" {
		t.Fatalf("expected en fallback for missing fr code")
	}
}

func TestLangContext(t *testing.T) {
	if LangFromContext(context.Background()) != DefaultLang {
		t.Fatalf("expected default lang")
	}
	if LangFromContext(WithLang(context.Background(), "fr")) != "fr" {
		t.Fatalf("expected fr from context")
	}
}
