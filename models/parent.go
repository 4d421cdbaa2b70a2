package models

import "fmt"

// ParentKind, reaksiyon ve yorumların bağlanabildiği entity türü.
// Polimorfik ebeveyn referansı string flag yerine typed discriminator
// ile taşınır; switch'lerde default dalı her zaman hata döner ki
// yeni bir tür eklenirse unutulan yer sessizce geçmesin.
type ParentKind string

const (
	ParentPost    ParentKind = "post"
	ParentComment ParentKind = "comment"
)

// ParentRef, (tür, id) çifti. Yorumun ve reaksiyonun ebeveynini
// tek değer olarak taşır.
type ParentRef struct {
	Kind ParentKind `json:"kind"`
	ID   string     `json:"id"`
}

// Validate, Kind'ın bilinen bir tür olduğunu ve ID'nin boş olmadığını
// kontrol eder.
func (p ParentRef) Validate() error {
	switch p.Kind {
	case ParentPost, ParentComment:
	default:
		return fmt.Errorf("invalid parent kind: %q", p.Kind)
	}
	if p.ID == "" {
		return fmt.Errorf("parent id is required")
	}
	return nil
}

// PostParent ve CommentParent, çağrı yerlerini kısaltan yardımcılar.
func PostParent(id string) ParentRef    { return ParentRef{Kind: ParentPost, ID: id} }
func CommentParent(id string) ParentRef { return ParentRef{Kind: ParentComment, ID: id} }
