//go:build !race

package account

func passwordHashCost() int {
	return DefaultBcryptCost
}
