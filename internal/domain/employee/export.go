package employee

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrrecords/internal/platform/i18n"
)

const recordFont = "record"

// Exporter renders the printable personal information form of an employee.
// Arabic text needs a UTF-8 TrueType font; without FontPath the core
// Helvetica font is used and the record is rendered in English.
type Exporter struct {
	FontPath string
	Now      func() time.Time
}

func (x Exporter) WritePDF(w io.Writer, emp Employee, lang string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	encode := pdf.UnicodeTranslatorFromDescriptor("")
	if x.FontPath != "" {
		pdf.AddUTF8Font(recordFont, "", x.FontPath)
		family = recordFont
		encode = func(s string) string { return s }
	} else {
		lang = i18n.English
	}
	if lang == i18n.Arabic {
		pdf.RTL()
	}
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	row := BuildRow(emp, lang)

	pdf.AddPage()
	pdf.SetFont(family, "", 16)
	pdf.CellFormat(0, 10, encode(i18n.T(lang, i18n.MsgRecordTitle)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	field := func(key, value string, relationship bool) {
		pdf.CellFormat(60, 8, encode(i18n.FieldLabel(key, lang, relationship)), "1", 0, "", false, 0, "")
		pdf.CellFormat(0, 8, encode(value), "1", 1, "", false, 0, "")
	}
	field("name", row.Name, false)
	field("nickName", row.NickName, false)
	field("profession", row.Profession, false)
	field("birthDate", row.BirthDate, false)
	field("nationalId", row.NationalID, false)
	field("maritalStatus", row.MaritalStatusLabel, false)
	field("residenceLocation", row.ResidenceLocation, false)
	field("hiringDate", row.HiringDate, false)
	field("hiringType", row.HiringTypeLabel, false)
	field("administration", row.AdministrationLabel, false)
	field("actualWork", row.ActualWork, false)
	field("phoneNumber", row.PhoneNumber, false)
	field("email", row.Email, false)
	field("notes", row.Notes, false)

	if len(row.Relationships) > 0 {
		pdf.Ln(6)
		pdf.SetFont(family, "", 13)
		pdf.CellFormat(0, 9, encode(i18n.T(lang, i18n.MsgRecordRelatives)), "", 1, "", false, 0, "")
		pdf.SetFont(family, "", 10)
		widths := []float64{28, 52, 36, 28, 46}
		headers := []string{"relationshipType", "name", "nationalId", "birthDate", "residenceLocation"}
		for i, key := range headers {
			pdf.CellFormat(widths[i], 8, encode(i18n.FieldLabel(key, lang, true)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
		for _, rel := range row.Relationships {
			values := []string{rel.RelationshipTypeLabel, rel.Name, rel.NationalID, rel.BirthDate, rel.ResidenceLocation}
			for i, value := range values {
				pdf.CellFormat(widths[i], 8, encode(value), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(10)
	pdf.SetFont(family, "", 11)
	pdf.MultiCell(0, 7, encode(i18n.T(lang, i18n.MsgRecordDeclaration)), "", "", false)
	pdf.Ln(8)
	pdf.CellFormat(90, 8, encode(i18n.T(lang, i18n.MsgRecordSignature)+": ____________________"), "", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, encode(i18n.T(lang, i18n.MsgRecordPrinted, now().Format(dateLayout))), "", 1, "", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
