package models

import "time"

// DBStatusHistory registra uma transição de status de um cadastro
// (status antigo/novo, quem alterou e quando).
type DBStatusHistory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime" json:"created_at"`

	CadastroID             uint64 `gorm:"column:cadastro_id;not null;index" json:"cadastro_id"`
	CadastroCodigoCadastro string `gorm:"column:cadastro_codigo_cadastro;type:varchar(16);index" json:"cadastro_codigo_cadastro"`
	ClienteNome            string `gorm:"column:cliente_nome;type:varchar(200)" json:"cliente_nome"`
	OldStatus              string `gorm:"column:old_status;type:varchar(40)" json:"old_status"`
	NewStatus              string `gorm:"column:new_status;type:varchar(40);not null" json:"new_status"`
	ChangedByUserName      string `gorm:"column:changed_by_user_name;type:varchar(100);not null" json:"changed_by_user_name"`
}

// TableName especifica o nome da tabela para GORM.
func (DBStatusHistory) TableName() string {
	return "status_history"
}
