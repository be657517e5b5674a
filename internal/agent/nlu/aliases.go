package nlu

// Field alias lists for customer and hospital payloads. Matching goes through FieldAlias.
var (
	PolicyKeyAliases   = []string{"no_polis", "nomor_polis", "policy_no", "policy_number", "no polis", "nomor polis", "polis", "noPolicy"}
	StatusAliases      = []string{"status_polis", "status polis", "policy_status", "status", "aktif", "is_active", "active_status"}
	ExpiryAliases      = []string{"tanggal_akhir", "akhir_polis", "masa_berlaku_sampai", "expired_date", "expiry_date", "end_date", "tanggal_expired", "tgl_akhir", "valid_until", "berlaku_sampai"}
	PlanAliases        = []string{"plan", "jenis_plan", "plan polis", "policy_plan", "tipe_plan"}
	ClaimMethodAliases = []string{"metode_klaim", "metode klaim", "claim_method", "jenis_klaim", "cashless"}
)

// HospitalNameKeys are tried in order; the first non-blank wins.
var HospitalNameKeys = []string{"nama_rs", "nama", "rumah_sakit", "rs"}

// DefaultPolicyKey is used when no sample key matches PolicyKeyAliases.
const DefaultPolicyKey = "no_polis"
