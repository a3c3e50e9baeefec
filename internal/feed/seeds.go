package feed

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
)

// seedPool is the filler shown in areas with no organic content yet. The
// entries read like real confessions so an empty city does not look dead,
// but every one of them is flagged is_seed and carries no coordinates.
var seedPool = []string{
	"Kadang aku pura-pura sibuk di kantor padahal cuma scroll hp. Capek banget rasanya harus kelihatan produktif terus.",
	"Aku suka sama temen sekelas tapi takut ngomong, takutnya malah jadi canggung dan pertemanan kami rusak.",
	"Gaji udah tiga tahun nggak naik tapi tiap hari masih senyum di depan bos. Ada yang senasib?",
	"Tiap malam minggu sendirian di kosan. Pengen punya circle baru tapi nggak tau mulai dari mana.",
	"Sebenernya aku nggak suka kopi, tapi tiap nongkrong tetep pesen biar nggak beda sendiri.",
	"Udah setahun lulus tapi masih bilang ke orang tua kalau kerjaan aman. Padahal freelance sepi banget.",
	"Aku sering nangis di toilet kampus pas jam kosong. Nggak ada yang tau dan rasanya lega bisa cerita di sini.",
	"Pacarku lebih sering main hp daripada ngobrol sama aku kalau ketemu. Harus mulai dari mana ya ngomonginnya?",
	"Diam-diam aku nabung buat resign tahun depan. Pengen buka warung kecil di deket rumah.",
	"Tiap lewat gerbang sekolah lama rasanya pengen balik ke masa itu. Hidup dulu lebih sederhana.",
	"Aku takut banget wisuda karena setelah itu nggak ada alasan lagi buat ketemu dia.",
	"Kalau ada yang nanya kabar, aku selalu jawab baik. Padahal akhir-akhir ini berat banget.",
}

// seedViews fabricates up to n filler posts. They are generated per
// request, backdated two to seven days, and shuffled so repeat visits do
// not show the same order.
func (c *Composer) seedViews(n int) []*PostView {
	if c.seedCount <= 0 {
		return nil
	}
	if n > c.seedCount {
		n = c.seedCount
	}
	if n > len(seedPool) {
		n = len(seedPool)
	}

	idx := rand.Perm(len(seedPool))[:n]
	now := c.now()
	views := make([]*PostView, n)
	for i, j := range idx {
		created := now.
			Add(-time.Duration(2+rand.Intn(6)) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(12)) * time.Hour)
		views[i] = &PostView{
			Post: models.Post{
				ID:        uuid.NewString(),
				AnonID:    "seed",
				Content:   seedPool[j],
				CreatedAt: created,
				ExpiresAt: now.Add(models.PostTTL),
				Status:    models.PostStatusActive,
				IsSeed:    true,
			},
			DistanceBucket: geo.BucketNearby,
			ItemType:       FilterConfession,
		}
	}
	return views
}
