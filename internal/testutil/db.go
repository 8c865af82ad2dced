// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/models"
	pkgdb "github.com/Skotchmaster/agriconnect/pkg/db"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

// Valid CPFs for fixtures.
const (
	CPFAna    = "52998224725"
	CPFBruno  = "11144477735"
	CPFCarla  = "12345678909"
	CPFAdmin  = "39053344705"
	CPFUnused = "98765432100"
)

const Password = "s3nha-forte"

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err, "open in-memory db")
	require.NoError(t, models.AutoMigrate(db), "migrate")
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

func hashed(t *testing.T) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func SeedClient(t *testing.T, db *gorm.DB, cpf, email string, role tokens.Role) *models.Client {
	t.Helper()
	c := &models.Client{CPF: cpf, Nome: "Cliente " + cpf, Email: email, Senha: hashed(t), Telefone: "11999990000", Tipo: role}
	require.NoError(t, db.Create(c).Error)
	return c
}

func SeedSeller(t *testing.T, db *gorm.DB, email string) *models.Seller {
	t.Helper()
	s := &models.Seller{
		Nome:            "Sitio " + email,
		Email:           email,
		Senha:           hashed(t),
		Telefone:        "11988887777",
		EnderecoVenda:   "Rua das Flores, 10",
		TipoVendedor:    "PRODUTOR",
		TipoDocumento:   "CPF",
		NumeroDocumento: CPFCarla,
		Tipo:            tokens.RoleSeller,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func SeedMarket(t *testing.T, db *gorm.DB, name string) *models.Market {
	t.Helper()
	m := &models.Market{Nome: name, Endereco: "Praca Central"}
	require.NoError(t, db.Create(m).Error)
	return m
}

func SeedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Nome: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

func SeedProduct(t *testing.T, db *gorm.DB, sellerID, name string, categoryID *uint) *models.Product {
	t.Helper()
	p := &models.Product{Nome: name, Descricao: name + " fresco", Preco: 9.5, Disponivel: true, VendedorID: sellerID, CategoriaID: categoryID}
	require.NoError(t, db.Omit("Vendedor", "Categoria").Create(p).Error)
	return p
}
