/*
Package keybinds maps key presses to dialog actions.

Bindings live in contexts: global bindings apply in every mode and the
import and export contexts override them. Defaults come from
NewDefaultRegistry; a keybinds.json file in the configuration directory
can rebind any action:

	{
	  // keys are comma separated
	  "import": {"paste": "ctrl+v,ctrl+y"},
	  "export": {"download": "w"}
	}

Rebinding an action replaces its default keys. ctrl+c always force-quits.
*/
package keybinds
