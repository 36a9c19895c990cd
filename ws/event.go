// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı auth event
// dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Server → client iletilen mesaj formatı
//
// Event akışı:
// 1. Bir auth olayı gerçekleşir (login, refresh, revoke...)
// 2. AuditService olayı DB'ye yazar ve Hub.Publish'i çağırır
// 3. Hub, event'i bağlı tüm admin client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
//
// Akış TEK YÖNLÜDÜR: client'lardan sadece heartbeat kabul edilir.
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "auth_event", "heartbeat" vb.
// Data: Event'e özgü payload — auth log kaydı vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Frontend eksik event tespit etmek için seq'i takip eder.
//   Örnek: seq 5'ten sonra seq 7 gelirse, 6 kaybolmuş demektir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk gönderilen
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt — "seni duydum"
	OpAuthEvent    = "auth_event"    // Yeni bir auth log kaydı düştü
)
