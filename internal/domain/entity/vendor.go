package entity

import "time"

// Vendor representa un vendedor de campo. Entidad de referencia: el ledger
// solo lee su identidad y nombre; el directorio de vendedores es un
// colaborador externo.
type Vendor struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Region    string
	Status    string // Ativo, Inativo, Férias, Atenção, Alto Estoque
	CreatedAt time.Time
}
