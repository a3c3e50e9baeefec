package spam

import "testing"

func TestMatch(t *testing.T) {
	rejected := []string{
		"08123456789",
		"hubungi 081234567890 ya",
		"+628123456789",
		"628123456789 langsung",
		"wa.me/123",
		"chat via WhatsApp aja",
		"add WA dong",
		"cek instagram.com/seseorang",
		"follow @rahasia.banget",
		"http://promo.example",
		"https://promo.example",
		"buka www.contoh.id",
		"kunjungi contoh.com sekarang",
		"Jl. Sudirman no 5",
		"jalan merdeka 10",
		"dm aku ya",
		"inbox dulu kak",
	}
	for _, s := range rejected {
		if !Match(s) {
			t.Errorf("Match(%q) = false, want true", s)
		}
	}

	accepted := []string{
		"Diskon kopi sore ini",
		"rame banget di sini",
		"ada razia parkir",
		"gratis ongkir sampai jam 9",
	}
	for _, s := range accepted {
		if Match(s) {
			t.Errorf("Match(%q) = true, want false", s)
		}
	}
}
