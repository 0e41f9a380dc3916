package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tipos de ação registrados no log de atividades.
const (
	AcaoNovoCadastro    = "NOVO_CADASTRO"
	AcaoEdicaoCadastro  = "EDICAO_CADASTRO"
	AcaoAlteracaoStatus = "ALTERACAO_STATUS"
	AcaoNovaObservacao  = "NOVA_OBSERVACAO"
	AcaoResgateCliente  = "RESGATE_CLIENTE"
	AcaoTrocaVendedor   = "TROCA_VENDEDOR"
	AcaoReenvioTelegram = "REENVIO_TELEGRAM"
)

// JSONDetails é um tipo customizado para o payload livre `details` (JSON no banco).
// Implementa sql.Scanner e driver.Valuer.
type JSONDetails map[string]interface{}

// Value implementa a interface driver.Valuer.
func (jd JSONDetails) Value() (driver.Value, error) {
	if jd == nil {
		return nil, nil
	}
	return json.Marshal(jd)
}

// Scan implementa a interface sql.Scanner.
func (jd *JSONDetails) Scan(value interface{}) error {
	if value == nil {
		*jd = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, okStr := value.(string)
		if !okStr {
			return errors.New("tipo de valor inválido para JSONDetails scan, esperado []byte ou string")
		}
		b = []byte(s)
	}
	if len(b) == 0 {
		*jd = make(JSONDetails)
		return nil
	}
	return json.Unmarshal(b, jd)
}

// ActivityLogEntry é um evento append-only do log de atividades da equipe.
type ActivityLogEntry struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time   `gorm:"not null;index;autoCreateTime" json:"created_at"`
	UserName   string      `gorm:"column:user_name;type:varchar(100);not null;index" json:"user_name"`
	UserRole   string      `gorm:"column:user_role;type:varchar(30)" json:"user_role"`
	ActionType string      `gorm:"column:action_type;type:varchar(50);not null;index" json:"action_type"`
	Details    JSONDetails `gorm:"column:details;type:text" json:"details"`
}

// TableName especifica o nome da tabela para GORM.
func (ActivityLogEntry) TableName() string {
	return "activity_log"
}
